package httpapi

import (
	"time"

	"github.com/MrMariodude/LibraCore/app/features/processpayment"
	"github.com/MrMariodude/LibraCore/app/features/returnloan"
	"github.com/MrMariodude/LibraCore/lending"
)

type addItemRequest struct {
	Title       string     `json:"title" validate:"required"`
	Author      string     `json:"author"`
	Genre       string     `json:"genre"`
	PublishedAt *time.Time `json:"publishedAt"`
	TotalCopies *int       `json:"totalCopies" validate:"required"`
}

type setTotalCopiesRequest struct {
	TotalCopies *int `json:"totalCopies" validate:"required"`
}

type checkoutRequest struct {
	ItemID     string     `json:"itemId" validate:"required,uuid"`
	BorrowerID string     `json:"borrowerId" validate:"required"`
	DueAt      *time.Time `json:"dueAt" validate:"required"`
}

type checkoutResponse struct {
	LoanID string `json:"loanId"`
}

type itemResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Genre           string     `json:"genre"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
	TotalCopies     int        `json:"totalCopies"`
	AvailableCopies int        `json:"availableCopies"`
}

type loanResponse struct {
	ID              string     `json:"id"`
	ItemID          string     `json:"itemId"`
	BorrowerID      string     `json:"borrowerId"`
	CheckoutAt      time.Time  `json:"checkoutAt"`
	DueAt           time.Time  `json:"dueAt"`
	State           string     `json:"state"`
	PenaltySnapshot *string    `json:"penaltySnapshot,omitempty"`
	ClosedAt        *time.Time `json:"closedAt,omitempty"`
	Overdue         bool       `json:"overdue"`
	AccruedPenalty  string     `json:"accruedPenalty"`
}

type returnResponse struct {
	LoanID     string `json:"loanId"`
	State      string `json:"state"`
	PenaltyDue string `json:"penaltyDue"`
}

type paymentResponse struct {
	LoanID     string `json:"loanId"`
	State      string `json:"state"`
	AmountPaid string `json:"amountPaid"`
}

func toItemResponse(item lending.Item) itemResponse {
	response := itemResponse{
		ID:              item.ID.String(),
		Title:           item.Title,
		Author:          item.Author,
		Genre:           item.Genre,
		TotalCopies:     item.TotalCopies,
		AvailableCopies: item.AvailableCopies,
	}

	if !item.PublishedAt.IsZero() {
		publishedAt := item.PublishedAt
		response.PublishedAt = &publishedAt
	}

	return response
}

func toItemResponses(items []lending.Item) []itemResponse {
	responses := make([]itemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toItemResponse(item))
	}

	return responses
}

func toLoanResponse(view lending.LoanView) loanResponse {
	response := loanResponse{
		ID:             view.ID.String(),
		ItemID:         view.ItemID.String(),
		BorrowerID:     view.BorrowerID,
		CheckoutAt:     view.CheckoutAt,
		DueAt:          view.DueAt,
		State:          string(view.State),
		ClosedAt:       view.ClosedAt,
		Overdue:        view.Overdue,
		AccruedPenalty: view.AccruedPenalty.String(),
	}

	if view.PenaltySnapshot != nil {
		snapshot := view.PenaltySnapshot.String()
		response.PenaltySnapshot = &snapshot
	}

	return response
}

func toLoanResponses(views []lending.LoanView) []loanResponse {
	responses := make([]loanResponse, 0, len(views))
	for _, view := range views {
		responses = append(responses, toLoanResponse(view))
	}

	return responses
}

func toReturnResponse(result returnloan.Result) returnResponse {
	return returnResponse{
		LoanID:     result.LoanID.String(),
		State:      string(result.State),
		PenaltyDue: result.PenaltyDue.String(),
	}
}

func toPaymentResponse(result processpayment.Result) paymentResponse {
	return paymentResponse{
		LoanID:     result.LoanID.String(),
		State:      string(result.State),
		AmountPaid: result.AmountPaid.String(),
	}
}
