package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var errInvalidID = errors.New("invalid id")

func pathID(r *http.Request, param string) (uuid.UUID, error) {
	return parseID(chi.URLParam(r, param))
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.Join(errInvalidID, err)
	}

	return id, nil
}

func (a *API) addItem(w http.ResponseWriter, r *http.Request) {
	var request addItemRequest
	if err := a.decode(r, &request); err != nil {
		a.writeBadRequest(w, err)
		return
	}

	var publishedAt time.Time
	if request.PublishedAt != nil {
		publishedAt = request.PublishedAt.UTC()
	}

	item, err := a.service.AddItem(r.Context(), request.Title, request.Author, request.Genre, publishedAt, *request.TotalCopies)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (a *API) listItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, err := a.service.ListItems(r.Context(), query.Get("searchBy"), query.Get("q"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponses(items))
}

func (a *API) getItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		a.writeBadRequest(w, err)
		return
	}

	item, err := a.service.GetItem(r.Context(), itemID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (a *API) setTotalCopies(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		a.writeBadRequest(w, err)
		return
	}

	var request setTotalCopiesRequest
	if err := a.decode(r, &request); err != nil {
		a.writeBadRequest(w, err)
		return
	}

	item, err := a.service.SetTotalCopies(r.Context(), itemID, *request.TotalCopies)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (a *API) removeItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "itemID")
	if err != nil {
		a.writeBadRequest(w, err)
		return
	}

	if err := a.service.RemoveItem(r.Context(), itemID); err != nil {
		a.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) checkout(w http.ResponseWriter, r *http.Request) {
	var request checkoutRequest
	if err := a.decode(r, &request); err != nil {
		a.writeBadRequest(w, err)
		return
	}

	itemID, err := parseID(request.ItemID)
	if err != nil {
		a.writeBadRequest(w, err)
		return
	}

	loanID, err := a.service.Checkout(r.Context(), itemID, request.BorrowerID, *request.DueAt)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{LoanID: loanID.String()})
}

func (a *API) getLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanID")
	if err != nil {
		a.writeBadRequest(w, err)
		return
	}

	view, err := a.service.GetLoan(r.Context(), loanID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLoanResponse(view))
}

func (a *API) returnLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanID")
	if err != nil {
		a.writeBadRequest(w, err)
		return
	}

	result, err := a.service.Return(r.Context(), loanID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReturnResponse(result))
}

func (a *API) processPayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanID")
	if err != nil {
		a.writeBadRequest(w, err)
		return
	}

	result, err := a.service.ProcessPayment(r.Context(), loanID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentResponse(result))
}

func (a *API) loansForBorrower(w http.ResponseWriter, r *http.Request) {
	views, err := a.service.ListLoansForBorrower(r.Context(), chi.URLParam(r, "borrowerID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLoanResponses(views))
}
