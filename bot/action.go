package bot

import (
	"fmt"
	"strconv"
	"strings"

	"marketplace-review-server/models"
)

// Verb is one of the closed set of wizard actions carried in callback data.
type Verb string

const (
	VerbStart        Verb = "start"
	VerbRate         Verb = "rate"
	VerbText         Verb = "text"
	VerbSubmit       Verb = "submit"
	VerbSubmitAnon   Verb = "submit_anon"
	VerbSubmitPublic Verb = "submit_pub"
	VerbReset        Verb = "reset"
	VerbBackSubmit   Verb = "back_submit"
	VerbCancel       Verb = "cancel"
	VerbAdminConfirm Verb = "adm_confirm"
	VerbAdminPublish Verb = "adm_publish"
)

const (
	directionCodeU2M = "u2m"
	directionCodeM2U = "m2u"
)

// Action is the decoded form of one callback press. Callback data is
// parsed exactly once at the routing boundary; handlers switch on Verb
// and never look at the raw string again.
type Action struct {
	Direction models.ReviewDirection
	Verb      Verb
	OrderID   uint
	Dimension string
	Value     int
	ReviewID  uint
}

// Encode renders the action into callback data:
//
//	<dir>:<verb>:<order_id>
//	<dir>:rate:<order_id>:<dimension>:<value>
//	<dir>:adm_confirm:<review_id>
//	<dir>:adm_publish:<review_id>
func (a Action) Encode() string {
	dir := directionCodeU2M
	if a.Direction == models.DirectionMerchantToUser {
		dir = directionCodeM2U
	}
	switch a.Verb {
	case VerbRate:
		return fmt.Sprintf("%s:%s:%d:%s:%d", dir, a.Verb, a.OrderID, a.Dimension, a.Value)
	case VerbAdminConfirm, VerbAdminPublish:
		return fmt.Sprintf("%s:%s:%d", dir, a.Verb, a.ReviewID)
	default:
		return fmt.Sprintf("%s:%s:%d", dir, a.Verb, a.OrderID)
	}
}

// ParseAction decodes callback data into an Action. Unknown directions,
// unknown verbs and malformed arguments all fail closed.
func ParseAction(data string) (Action, bool) {
	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return Action{}, false
	}

	var action Action
	switch parts[0] {
	case directionCodeU2M:
		action.Direction = models.DirectionUserToMerchant
	case directionCodeM2U:
		action.Direction = models.DirectionMerchantToUser
	default:
		return Action{}, false
	}

	action.Verb = Verb(parts[1])
	switch action.Verb {
	case VerbRate:
		if len(parts) != 5 {
			return Action{}, false
		}
		orderID, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return Action{}, false
		}
		value, err := strconv.Atoi(parts[4])
		if err != nil {
			return Action{}, false
		}
		action.OrderID = uint(orderID)
		action.Dimension = parts[3]
		action.Value = value
	case VerbAdminConfirm, VerbAdminPublish:
		if len(parts) != 3 {
			return Action{}, false
		}
		reviewID, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return Action{}, false
		}
		action.ReviewID = uint(reviewID)
	case VerbStart, VerbText, VerbSubmit, VerbSubmitAnon, VerbSubmitPublic, VerbReset, VerbBackSubmit, VerbCancel:
		if len(parts) != 3 {
			return Action{}, false
		}
		orderID, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return Action{}, false
		}
		action.OrderID = uint(orderID)
	default:
		return Action{}, false
	}

	return action, true
}
