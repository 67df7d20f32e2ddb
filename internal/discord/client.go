package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"mission-tracker/internal/config"
	"mission-tracker/internal/domain"
)

const membersPageSize = 1000

// Client fetches guild members for the roster. With no credentials it is
// disabled and returns an empty member list.
type Client struct {
	session *discordgo.Session
	guildID string
	logger  zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	if cfg.DiscordToken == "" || cfg.GuildID == "" {
		return &Client{logger: logger}, nil
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &Client{session: session, guildID: cfg.GuildID, logger: logger}, nil
}

// GuildMembers pages through the full member list.
func (c *Client) GuildMembers(ctx context.Context) ([]domain.GuildMember, error) {
	if c.session == nil {
		c.logger.Debug().Msg("discord client disabled, returning empty roster")
		return nil, nil
	}

	var members []domain.GuildMember
	after := ""
	for {
		page, err := c.session.GuildMembers(c.guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch guild members: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, m := range page {
			if m.User == nil {
				continue
			}
			members = append(members, domain.GuildMember{
				ID:          m.User.ID,
				DisplayName: displayName(m),
				AvatarURL:   m.AvatarURL("256"),
				JoinedAt:    m.JoinedAt,
				RoleIDs:     m.Roles,
			})
			after = m.User.ID
		}
		if len(page) < membersPageSize {
			break
		}
	}

	c.logger.Info().Int("count", len(members)).Msg("guild members fetched")
	return members, nil
}

func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
