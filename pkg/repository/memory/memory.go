package memory

import (
	"github.com/cottonlesergal/ucontrol/pkg/domain/interfaces"
)

// Memory is an in-memory shadow repository, used for development and tests.
type Memory struct {
	user    *userShadow
	channel *channelShadow
	message *messageShadow
	dm      *dmShadow
}

var _ interfaces.ShadowRepository = &Memory{}

func New() *Memory {
	userRepo := newUserShadow()
	channelRepo := newChannelShadow()

	return &Memory{
		user:    userRepo,
		channel: channelRepo,
		message: newMessageShadow(userRepo, channelRepo),
		dm:      newDMShadow(),
	}
}

func (m *Memory) User() interfaces.UserShadow {
	return m.user
}

func (m *Memory) Channel() interfaces.ChannelShadow {
	return m.channel
}

func (m *Memory) Message() interfaces.MessageShadow {
	return m.message
}

func (m *Memory) DM() interfaces.DMShadow {
	return m.dm
}

func (m *Memory) Close() error {
	return nil
}
