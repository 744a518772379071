package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/stridehq/challenge-api/internal/models"
)

// Notifier receives engine events as fire-and-forget side effects. Failures
// are logged and never fail the request: by the time a notification is sent
// the transaction has already committed.
type Notifier interface {
	NotifyAchievementAward(user models.User, achievement models.Achievement) error
	NotifyAdminEdit(user models.User, activity models.Activity, editor models.User) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyAchievementAward(user models.User, achievement models.Achievement) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := fmt.Sprintf("🏆 **Achievement Unlocked**\n**User:** %s (<@%s>)\n**Achievement:** %s (+%.0f points)",
		user.Username,
		user.DiscordID,
		achievement.Name,
		achievement.BonusPoints,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}

func (n *DiscordNotifier) NotifyAdminEdit(user models.User, activity models.Activity, editor models.User) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := fmt.Sprintf("✏️ **Activity Adjusted**\n**User:** %s (<@%s>)\n**Activity:** #%d on %s, now %.1f points\n**Edited by:** %s",
		user.Username,
		user.DiscordID,
		activity.ID,
		activity.LoggedDate.Format("2006-01-02"),
		activity.PointsEarned,
		editor.Username,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
