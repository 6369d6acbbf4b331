package ratelimiter

import (
	"fmt"
	"reflect"

	sdkmath "cosmossdk.io/math"
)

type InstantiateMsg struct {
	GovModule string    `json:"gov_module"`
	IBCModule string    `json:"ibc_module"`
	Paths     []PathMsg `json:"paths"`
}

// ExecuteMsg is a tagged union; exactly one field is set.
type ExecuteMsg struct {
	AddRateLimit           *PathMsg                   `json:"add_rate_limit,omitempty"`
	RemoveRateLimit        *RemoveRateLimitMsg        `json:"remove_rate_limit,omitempty"`
	ResetPathQuota         *ResetPathQuotaMsg         `json:"reset_path_quota,omitempty"`
	EditPathQuota          *EditPathQuotaMsg          `json:"edit_path_quota,omitempty"`
	GrantRole              *RoleMsg                   `json:"grant_role,omitempty"`
	RevokeRole             *RoleMsg                   `json:"revoke_role,omitempty"`
	RemoveMessage          *RemoveMessageMsg          `json:"remove_message,omitempty"`
	SetTimelockDelay       *SetTimelockDelayMsg       `json:"set_timelock_delay,omitempty"`
	SetDenomRestrictions   *SetDenomRestrictionsMsg   `json:"set_denom_restrictions,omitempty"`
	UnsetDenomRestrictions *UnsetDenomRestrictionsMsg `json:"unset_denom_restrictions,omitempty"`
	ProcessMessages        *ProcessMessagesMsg        `json:"process_messages,omitempty"`
}

type RemoveRateLimitMsg struct {
	ChannelID string `json:"channel_id"`
	Denom     string `json:"denom"`
}

type ResetPathQuotaMsg struct {
	ChannelID string `json:"channel_id"`
	Denom     string `json:"denom"`
	QuotaID   string `json:"quota_id"`
}

type EditPathQuotaMsg struct {
	ChannelID string   `json:"channel_id"`
	Denom     string   `json:"denom"`
	Quota     QuotaMsg `json:"quota"`
}

type RoleMsg struct {
	Signer string `json:"signer"`
	Roles  []Role `json:"roles"`
}

type RemoveMessageMsg struct {
	MessageID string `json:"message_id"`
}

type SetTimelockDelayMsg struct {
	Signer string `json:"signer"`
	Hours  uint64 `json:"hours"`
}

type SetDenomRestrictionsMsg struct {
	Denom           string   `json:"denom"`
	AllowedChannels []string `json:"allowed_channels"`
}

type UnsetDenomRestrictionsMsg struct {
	Denom string `json:"denom"`
}

type ProcessMessagesMsg struct {
	Count      *uint64  `json:"count,omitempty"`
	MessageIDs []string `json:"message_ids,omitempty"`
}

// SudoMsg is only delivered by the chain's IBC middleware.
type SudoMsg struct {
	SendPacket *PacketMsg   `json:"send_packet,omitempty"`
	RecvPacket *PacketMsg   `json:"recv_packet,omitempty"`
	UndoSend   *UndoSendMsg `json:"undo_send,omitempty"`
}

// PacketMsg carries the packet and, optionally, the channel value the
// middleware computed. Without it the contract queries the denom supply.
type PacketMsg struct {
	Packet       Packet        `json:"packet"`
	ChannelValue *sdkmath.Uint `json:"channel_value,omitempty"`
}

type UndoSendMsg struct {
	Packet Packet `json:"packet"`
}

type QueryMsg struct {
	GetQuotas            *PathQuery          `json:"get_quotas,omitempty"`
	GetUsage             *PathQuery          `json:"get_usage,omitempty"`
	GetRoles             *GetRolesQuery      `json:"get_roles,omitempty"`
	GetRoleOwners        *struct{}           `json:"get_role_owners,omitempty"`
	GetMessageIDs        *struct{}           `json:"get_message_ids,omitempty"`
	GetMessage           *GetMessageQuery    `json:"get_message,omitempty"`
	GetTimelockDelay     *GetTimelockQuery   `json:"get_timelock_delay,omitempty"`
	GetDenomRestrictions *DenomRestrictQuery `json:"get_denom_restrictions,omitempty"`
}

type PathQuery struct {
	ChannelID string `json:"channel_id"`
	Denom     string `json:"denom"`
}

type GetRolesQuery struct {
	Owner string `json:"owner"`
}

type GetMessageQuery struct {
	ID string `json:"id"`
}

type GetTimelockQuery struct {
	Signer string `json:"signer"`
}

type DenomRestrictQuery struct {
	Denom string `json:"denom"`
}

// QuotaUsage is a display friendly view of a quota in the current period.
type QuotaUsage struct {
	Name             string `json:"name"`
	UsedIn           string `json:"used_in"`
	UsedOut          string `json:"used_out"`
	MaxIn            string `json:"max_in"`
	MaxOut           string `json:"max_out"`
	PercentUsedIn    string `json:"percent_used_in"`
	PercentUsedOut   string `json:"percent_used_out"`
	PeriodEndSeconds uint64 `json:"period_end_seconds"`
}

// variant returns the single set field of a tagged union message.
func variant(msg any) (string, error) {
	v := reflect.ValueOf(msg)
	t := v.Type()
	name := ""
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).IsNil() {
			continue
		}
		if name != "" {
			return "", fmt.Errorf("%s: more than one variant set: %w", t.Name(), ErrInvalidInput)
		}
		name = t.Field(i).Name
	}
	if name == "" {
		return "", fmt.Errorf("%s: no variant set: %w", t.Name(), ErrUnknownMessage)
	}
	return name, nil
}
