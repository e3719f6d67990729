package httpapi_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrMariodude/LibraCore/app/features/processpayment"
	"github.com/MrMariodude/LibraCore/app/features/returnloan"
	"github.com/MrMariodude/LibraCore/app/httpapi"
	"github.com/MrMariodude/LibraCore/app/lendingservice"
	"github.com/MrMariodude/LibraCore/lending"
	"github.com/MrMariodude/LibraCore/lending/memengine"
	"github.com/MrMariodude/LibraCore/testutil/helper"
)

type fixture struct {
	server *httptest.Server
	clock  *lending.ManualClock
	logs   *helper.LogHandlerSpy
}

func givenServer(t *testing.T) fixture {
	t.Helper()

	store, err := memengine.NewStore()
	require.NoError(t, err)

	clock := lending.NewManualClock(time.Unix(0, 0).UTC())
	service, err := lendingservice.NewService(store, lendingservice.WithClock(clock))
	require.NoError(t, err)

	logs := helper.NewLogHandlerSpy(false)
	api, err := httpapi.NewAPI(service, httpapi.WithContextualLogger(slog.New(logs)))
	require.NoError(t, err)

	server := httptest.NewServer(api.Router())
	t.Cleanup(server.Close)

	return fixture{server: server, clock: clock, logs: logs}
}

func (f fixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, jsoniter.Unmarshal(raw, &decoded))
	}

	return resp.StatusCode, decoded
}

func (f fixture) list(t *testing.T, path string) (int, []map[string]any) {
	t.Helper()

	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded []map[string]any
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&decoded))

	return resp.StatusCode, decoded
}

func (f fixture) givenItem(t *testing.T, title string, copies int) string {
	t.Helper()

	status, body := f.do(t, http.MethodPost, "/api/v1/items",
		`{"title":"`+title+`","author":"Vlad Khononov","genre":"Software","totalCopies":`+itoa(copies)+`}`)
	require.Equal(t, http.StatusCreated, status)

	return body["id"].(string)
}

func itoa(i int) string {
	b, _ := jsoniter.Marshal(i)
	return string(b)
}

func Test_API_LoanLifecycle(t *testing.T) {
	// setup
	f := givenServer(t)

	// arrange
	itemID := f.givenItem(t, "Learning Domain-Driven Design", 1)
	dueAt := f.clock.Now().Add(7 * 24 * time.Hour).Format(time.RFC3339)

	// act
	status, body := f.do(t, http.MethodPost, "/api/v1/loans",
		`{"itemId":"`+itemID+`","borrowerId":"reader-1","dueAt":"`+dueAt+`"}`)

	// assert
	require.Equal(t, http.StatusCreated, status)
	loanID := body["loanId"].(string)

	status, body = f.do(t, http.MethodPost, "/api/v1/loans",
		`{"itemId":"`+itemID+`","borrowerId":"reader-2","dueAt":"`+dueAt+`"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, lending.ErrNoCopiesAvailable.Error(), body["error"])

	f.clock.Advance(10 * 24 * time.Hour)

	status, body = f.do(t, http.MethodGet, "/api/v1/loans/"+loanID, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "active", body["state"])
	assert.Equal(t, true, body["overdue"])
	assert.Equal(t, "11.50", body["accruedPenalty"])

	status, body = f.do(t, http.MethodPost, "/api/v1/loans/"+loanID+"/return", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pending_payment", body["state"])
	assert.Equal(t, "11.50", body["penaltyDue"])

	status, _ = f.do(t, http.MethodPost, "/api/v1/loans/"+loanID+"/return", "")
	assert.Equal(t, http.StatusConflict, status)

	status, body = f.do(t, http.MethodPost, "/api/v1/loans/"+loanID+"/payment", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "returned", body["state"])
	assert.Equal(t, "11.50", body["amountPaid"])

	status, loans := f.list(t, "/api/v1/borrowers/reader-1/loans")
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, loans, 1)
	assert.Equal(t, "11.50", loans[0]["penaltySnapshot"])

	status, body = f.do(t, http.MethodGet, "/api/v1/items/"+itemID, "")
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["availableCopies"])
}

func Test_API_Catalog(t *testing.T) {
	// setup
	f := givenServer(t)

	// arrange
	itemID := f.givenItem(t, "Team Topologies", 2)
	f.givenItem(t, "Accelerate", 1)

	t.Run("list ordered by title", func(t *testing.T) {
		status, items := f.list(t, "/api/v1/items")

		assert.Equal(t, http.StatusOK, status)
		require.Len(t, items, 2)
		assert.Equal(t, "Accelerate", items[0]["title"])
	})

	t.Run("search", func(t *testing.T) {
		status, items := f.list(t, "/api/v1/items?searchBy=title&q=topo")

		assert.Equal(t, http.StatusOK, status)
		require.Len(t, items, 1)
		assert.Equal(t, itemID, items[0]["id"])
	})

	t.Run("set total copies", func(t *testing.T) {
		status, body := f.do(t, http.MethodPut, "/api/v1/items/"+itemID+"/copies", `{"totalCopies":5}`)

		assert.Equal(t, http.StatusOK, status)
		assert.EqualValues(t, 5, body["totalCopies"])
		assert.EqualValues(t, 5, body["availableCopies"])
	})

	t.Run("duplicate title", func(t *testing.T) {
		status, body := f.do(t, http.MethodPost, "/api/v1/items", `{"title":"Accelerate","totalCopies":1}`)

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, lending.ErrDuplicateTitle.Error(), body["error"])
	})

	t.Run("remove", func(t *testing.T) {
		status, _ := f.do(t, http.MethodDelete, "/api/v1/items/"+itemID, "")
		assert.Equal(t, http.StatusNoContent, status)

		status, _ = f.do(t, http.MethodGet, "/api/v1/items/"+itemID, "")
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func Test_API_ErrorMapping(t *testing.T) {
	// setup
	f := givenServer(t)
	itemID := f.givenItem(t, "Refactoring", 1)
	past := f.clock.Now().Add(-time.Hour).Format(time.RFC3339)

	testCases := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"malformed json", http.MethodPost, "/api/v1/loans", `{"itemId":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/v1/items", `{"title":"x","totalCopies":1,"isbn":"1"}`, http.StatusBadRequest},
		{"missing due date", http.MethodPost, "/api/v1/loans", `{"itemId":"` + itemID + `","borrowerId":"r"}`, http.StatusBadRequest},
		{"item id not a uuid", http.MethodPost, "/api/v1/loans", `{"itemId":"abc","borrowerId":"r","dueAt":"` + past + `"}`, http.StatusBadRequest},
		{"path id not a uuid", http.MethodGet, "/api/v1/loans/abc", "", http.StatusBadRequest},
		{"due date in the past", http.MethodPost, "/api/v1/loans", `{"itemId":"` + itemID + `","borrowerId":"r","dueAt":"` + past + `"}`, http.StatusUnprocessableEntity},
		{"blank borrower", http.MethodPost, "/api/v1/loans", `{"itemId":"` + itemID + `","borrowerId":"  ","dueAt":"` + past + `"}`, http.StatusUnprocessableEntity},
		{"negative copies", http.MethodPost, "/api/v1/items", `{"title":"Negative","author":"A. Author","totalCopies":-1}`, http.StatusUnprocessableEntity},
		{"blank title", http.MethodPost, "/api/v1/items", `{"title":"   ","author":"A. Author","totalCopies":1}`, http.StatusUnprocessableEntity},
		{"blank author", http.MethodPost, "/api/v1/items", `{"title":"No Author","author":"  ","totalCopies":1}`, http.StatusUnprocessableEntity},
		{"unknown loan", http.MethodGet, "/api/v1/loans/" + uuid.NewString(), "", http.StatusNotFound},
		{"unknown item", http.MethodPut, "/api/v1/items/" + uuid.NewString() + "/copies", `{"totalCopies":1}`, http.StatusNotFound},
		{"payment of unknown loan", http.MethodPost, "/api/v1/loans/" + uuid.NewString() + "/payment", "", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			status, body := f.do(t, tc.method, tc.path, tc.body)

			// assert
			assert.Equal(t, tc.expectedStatus, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

type failingService struct {
	httpapi.LendingService
}

func (failingService) GetLoan(context.Context, uuid.UUID) (lending.LoanView, error) {
	return lending.LoanView{}, errors.Join(lending.ErrQueryingFailed, errors.New("connection refused"))
}

func (failingService) Return(context.Context, uuid.UUID) (returnloan.Result, error) {
	panic("boom")
}

func (failingService) ProcessPayment(context.Context, uuid.UUID) (processpayment.Result, error) {
	return processpayment.Result{}, lending.ErrConcurrencyConflict
}

func Test_API_InternalErrors(t *testing.T) {
	// setup
	logs := helper.NewLogHandlerSpy(false)
	api, err := httpapi.NewAPI(failingService{}, httpapi.WithLogger(slog.New(logs)))
	require.NoError(t, err)
	server := httptest.NewServer(api.Router())
	defer server.Close()
	f := fixture{server: server}

	t.Run("storage failure is hidden", func(t *testing.T) {
		// act
		status, body := f.do(t, http.MethodGet, "/api/v1/loans/"+uuid.NewString(), "")

		// assert
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Internal Server Error", body["error"])
		assert.True(t, logs.HasErrorLogWithMessage("http request failed").Assert())
	})

	t.Run("exhausted retries", func(t *testing.T) {
		// act
		status, _ := f.do(t, http.MethodPost, "/api/v1/loans/"+uuid.NewString()+"/payment", "")

		// assert
		assert.Equal(t, http.StatusInternalServerError, status)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		// act
		status, _ := f.do(t, http.MethodPost, "/api/v1/loans/"+uuid.NewString()+"/return", "")

		// assert
		assert.Equal(t, http.StatusInternalServerError, status)
	})
}

func Test_API_RequestLogAndHealth(t *testing.T) {
	// setup
	f := givenServer(t)

	// act
	status, body := f.do(t, http.MethodGet, "/health", "")

	// assert
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.True(t, f.logs.HasInfoLogWithMessage("http request handled").WithAttr("path", "/health").Assert())
}
