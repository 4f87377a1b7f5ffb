package mutation

import (
	"bookit/internal/domains/book/model"
	"bookit/internal/infrastructure/notify"
)

const (
	TitleSuccess = "Operation Successful"
	TitleFailure = "Operation Failed"

	MsgNetworkError    = "Network Error, Could not connect to server"
	MsgUnknownResponse = "Unknown response from server"
)

// SuccessNotification is the message shown when a mutation of kind commits.
func SuccessNotification(kind Kind) notify.Notification {
	switch kind {
	case KindCreate:
		return notify.Notification{Level: notify.LevelSuccess, Title: TitleSuccess, Description: "Book added successfully"}
	case KindUpdate:
		return notify.Notification{Level: notify.LevelSuccess, Description: "Book Updated"}
	default:
		return notify.Notification{Level: notify.LevelSuccess, Description: "Book Deleted"}
	}
}

// FailureNotification turns f into a destructive notification under title.
// A server message is shown verbatim; everything else gets a generic text.
func FailureNotification(title string, f model.Failure) notify.Notification {
	n := notify.Notification{Level: notify.LevelFailure, Title: title}
	switch e := f.(type) {
	case *model.ServerError:
		n.Description = e.Msg
	case *model.UnknownResponseError:
		n.Description = MsgUnknownResponse
	case *model.NetworkError:
		n.Description = MsgNetworkError
	case *model.ValidationError:
		n.Description = e.Error()
	default:
		n.Description = MsgNetworkError
	}
	return n
}
