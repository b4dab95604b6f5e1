package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"fakhiuBack/internal/backend"
	"fakhiuBack/internal/models"
)

const (
	defaultRequestTitle       = "General item"
	defaultRequestDescription = "No additional details"
	requestSource             = "marketplace"
	imageFolder               = "requests"
)

const (
	msgCarryOffered    = "Your offer to carry this item has been sent!"
	msgCarryRequested  = "Your request to have this item carried has been sent!"
	msgSignIn          = "Please sign in before sending a request"
	msgRejectedPrefix  = "Something went wrong: "
	msgConnectionError = "Could not reach the server, please try again"
)

// RequestCreator posts new requests to the backend.
type RequestCreator interface {
	CreateRequest(ctx context.Context, token string, in models.NewRequest) error
}

// ImageStore turns inline images into hosted URLs.
type ImageStore interface {
	Upload(ctx context.Context, image, folder string) (string, error)
}

// SubmissionNotifier is told about every submission outcome.
type SubmissionNotifier interface {
	NotifySubmission(ctx context.Context, deviceToken string, n models.Notification) error
}

type RequestService struct {
	Backend  RequestCreator
	Images   ImageStore
	Notifier SubmissionNotifier
	Log      Logger
}

// Submission is one attempt to create a request.
type Submission struct {
	Token       string
	DeviceToken string
	Form        models.RequestForm
	// Tab is the browse mode the draft was written in; it picks the
	// success message.
	Tab models.Tab
	// Offer is the open offer the request is made against, if any.
	Offer *models.Listing
}

// Submit posts the draft and classifies the outcome. The returned
// notification is always set; err is nil only on success.
func (s *RequestService) Submit(ctx context.Context, sub Submission) (models.Notification, error) {
	n, err := s.submit(ctx, sub)
	if s.Notifier != nil && sub.DeviceToken != "" {
		if nerr := s.Notifier.NotifySubmission(ctx, sub.DeviceToken, n); nerr != nil && s.Log != nil {
			s.Log.Errorf("push submission outcome: %v", nerr)
		}
	}
	return n, err
}

func (s *RequestService) submit(ctx context.Context, sub Submission) (models.Notification, error) {
	if strings.TrimSpace(sub.Token) == "" {
		return models.Notification{Kind: models.NoticeUnauthenticated, Message: msgSignIn}, models.ErrUnauthenticated
	}

	body := BuildNewRequest(sub.Form, sub.Offer)
	if s.Images != nil && body.Image != "" {
		url, err := s.Images.Upload(ctx, body.Image, imageFolder)
		if err != nil {
			if errors.Is(err, models.ErrInvalidImageData) {
				return models.Notification{Kind: models.NoticeRejected, Message: msgRejectedPrefix + err.Error()}, err
			}
			if s.Log != nil {
				s.Log.Errorf("upload request image: %v", err)
			}
		} else {
			body.Image = url
		}
	}

	err := s.Backend.CreateRequest(ctx, sub.Token, body)
	return classifySubmission(sub.Tab, err), err
}

func classifySubmission(tab models.Tab, err error) models.Notification {
	var statusErr *backend.StatusError
	switch {
	case err == nil:
		return models.Notification{Kind: models.NoticeSuccess, Message: successMessage(tab)}
	case errors.Is(err, models.ErrUnauthenticated):
		return models.Notification{Kind: models.NoticeUnauthenticated, Message: msgSignIn}
	case errors.As(err, &statusErr):
		return models.Notification{Kind: models.NoticeRejected, Message: msgRejectedPrefix + statusErr.Body}
	default:
		return models.Notification{Kind: models.NoticeConnection, Message: msgConnectionError}
	}
}

// successMessage words the confirmation for the browse mode: on the
// requests tab the user offers to carry, on the offers tab they ask to
// have something carried.
func successMessage(tab models.Tab) string {
	if tab == models.TabOffers {
		return msgCarryRequested
	}
	return msgCarryOffered
}

// BuildNewRequest maps a draft to the backend body. Route and deadline
// fall back to the open offer's when the draft leaves them empty.
func BuildNewRequest(form models.RequestForm, offer *models.Listing) models.NewRequest {
	req := models.NewRequest{
		Title:        strings.TrimSpace(form.ItemName),
		FromLocation: form.FromLocation,
		ToLocation:   form.ToLocation,
		Deadline:     form.Deadline,
		Budget:       leadingInt(form.Amount),
		Description:  strings.TrimSpace(form.Note),
		Image:        form.Image,
		Source:       requestSource,
	}
	if req.Title == "" {
		req.Title = defaultRequestTitle
	}
	if req.Description == "" {
		req.Description = defaultRequestDescription
	}
	if offer != nil {
		req.OfferID = offerID(offer.ID)
		if req.FromLocation == "" {
			req.FromLocation = offer.RouteFrom
		}
		if req.ToLocation == "" {
			req.ToLocation = offer.RouteTo
		}
		if req.Deadline == "" {
			req.Deadline = offer.FlightDate
		}
	}
	return req
}

// offerID sends numeric ids as numbers, everything else as text.
func offerID(id string) interface{} {
	if n, err := strconv.Atoi(id); err == nil {
		return n
	}
	return id
}

// leadingInt reads the integer at the start of s, ignoring leading
// spaces; "12.5kg" is 12 and anything without digits is 0.
func leadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
