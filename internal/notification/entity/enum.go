package entity

import (
	"strings"
)

type Channel int16

const (
	ChannelUnknown  Channel = 0
	ChannelEmail    Channel = 1
	ChannelSMS      Channel = 2
	ChannelWhatsApp Channel = 3
	ChannelSlack    Channel = 4
	ChannelTeams    Channel = 5
	ChannelTelegram Channel = 6
	ChannelRealtime Channel = 7
)

func ChannelFromString(raw string) Channel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "email":
		return ChannelEmail
	case "sms":
		return ChannelSMS
	case "whatsapp":
		return ChannelWhatsApp
	case "slack":
		return ChannelSlack
	case "teams":
		return ChannelTeams
	case "telegram":
		return ChannelTelegram
	case "realtime":
		return ChannelRealtime
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	case ChannelWhatsApp:
		return "whatsapp"
	case ChannelSlack:
		return "slack"
	case ChannelTeams:
		return "teams"
	case ChannelTelegram:
		return "telegram"
	case ChannelRealtime:
		return "realtime"
	default:
		return "unknown"
	}
}

type Priority int16

const (
	PriorityLow    Priority = 0
	PriorityNormal Priority = 1
	PriorityHigh   Priority = 2
	PriorityUrgent Priority = 3
)

func PriorityFromString(raw string) Priority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow
	case "high":
		return PriorityHigh
	case "urgent":
		return PriorityUrgent
	default:
		return PriorityNormal
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "normal"
	}
}
