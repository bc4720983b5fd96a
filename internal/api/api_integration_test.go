// internal/api/api_integration_test.go
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "cashcard-api/internal"
)

// testApp is the global application instance for testing.
var testApp *app.Application

// testServer is the httptest server.
var testServer *httptest.Server

type cardBody struct {
	ID     int64           `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

// TestMain boots the full application on the in-memory backend with the
// demo users and cards.
func TestMain(m *testing.M) {
	setupEnvVars()

	testApp = app.NewApplication()
	if err := testApp.Initialize(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize test application: %v\n", err)
		os.Exit(1)
	}

	testServer = httptest.NewServer(testApp.HTTPHandler)

	code := m.Run()

	testServer.Close()
	if err := testApp.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown test application: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

func setupEnvVars() {
	os.Setenv("STORAGE_BACKEND", "memory")
	os.Setenv("SEED_DEMO_DATA", "true")
	os.Setenv("BCRYPT_COST", "4")
	os.Setenv("RATE_LIMIT_RPS", "0")
	os.Setenv("REDIS_URL", "")
	os.Setenv("LOG_LEVEL", "error")
}

// makeRequest sends an HTTP request as username/password. An empty
// username sends no credentials.
func makeRequest(t *testing.T, username, password, method, path string, body io.Reader) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, testServer.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if username != "" {
		req.SetBasicAuth(username, password)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(respBody)
}

func asSarah(t *testing.T, method, path string, body io.Reader) (*http.Response, string) {
	return makeRequest(t, "sarah1", "abc123", method, path, body)
}

func decodeCards(t *testing.T, body string) []cardBody {
	t.Helper()
	var cards []cardBody
	require.NoError(t, json.Unmarshal([]byte(body), &cards))
	return cards
}

func amounts(cards []cardBody) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Amount.StringFixed(2))
	}
	return out
}

func TestGetCashCardIntegration(t *testing.T) {
	t.Run("OwnedCard", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodGet, "/cashcards/99", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var card cardBody
		require.NoError(t, json.Unmarshal([]byte(body), &card))
		assert.Equal(t, int64(99), card.ID)
		assert.Equal(t, "123.45", card.Amount.StringFixed(2))
		assert.NotContains(t, body, "owner")
	})

	t.Run("UnknownID", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodGet, "/cashcards/1000", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Empty(t, body)
	})

	t.Run("CardOwnedBySomeoneElse", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodGet, "/cashcards/102", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Empty(t, body)
	})

	t.Run("NonNumericID", func(t *testing.T) {
		resp, _ := asSarah(t, http.MethodGet, "/cashcards/abc", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestListCashCardsIntegration(t *testing.T) {
	t.Run("DefaultPageSortedByAmount", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodGet, "/cashcards", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		cards := decodeCards(t, body)
		assert.Len(t, cards, 3)
		assert.Equal(t, []string{"1.00", "123.45", "150.00"}, amounts(cards))
	})

	t.Run("OnlyOwnCards", func(t *testing.T) {
		resp, body := makeRequest(t, "john2", "xyz789", http.MethodGet, "/cashcards", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		cards := decodeCards(t, body)
		require.Len(t, cards, 1)
		assert.Equal(t, int64(102), cards[0].ID)
	})

	t.Run("SinglePage", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodGet, "/cashcards?page=0&size=1", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decodeCards(t, body), 1)
	})

	t.Run("SortedDescending", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodGet, "/cashcards?page=0&size=1&sort=amount,desc", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		cards := decodeCards(t, body)
		require.Len(t, cards, 1)
		assert.Equal(t, "150.00", cards[0].Amount.StringFixed(2))
	})

	t.Run("PagePastTheEnd", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodGet, "/cashcards?page=50", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[]`, body)
	})

	t.Run("HugePageIsEmpty", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodGet, "/cashcards?page=4611686018427387904", nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[]`, body)
	})

	t.Run("UnknownSortField", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodGet, "/cashcards?sort=owner", nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "error")
	})
}

func TestCreateCashCardIntegration(t *testing.T) {
	t.Run("CreatedCardIsRetrievable", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodPost, "/cashcards", strings.NewReader(`{"amount": 250.00}`))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Empty(t, body)
		location := resp.Header.Get("Location")
		require.NotEmpty(t, location)

		getResp, getBody := asSarah(t, http.MethodGet, location, nil)
		assert.Equal(t, http.StatusOK, getResp.StatusCode)
		var card cardBody
		require.NoError(t, json.Unmarshal([]byte(getBody), &card))
		assert.NotZero(t, card.ID)
		assert.Equal(t, "250.00", card.Amount.StringFixed(2))
		assert.Equal(t, fmt.Sprintf("/cashcards/%d", card.ID), location)

		// Clean up so the listing tests keep seeing the seeded cards.
		delResp, _ := asSarah(t, http.MethodDelete, location, nil)
		assert.Equal(t, http.StatusNoContent, delResp.StatusCode)
	})

	t.Run("ClientIDAndOwnerIgnored", func(t *testing.T) {
		resp, _ := asSarah(t, http.MethodPost, "/cashcards", strings.NewReader(`{"id": 102, "amount": 5, "owner": "john2"}`))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		location := resp.Header.Get("Location")
		assert.NotEqual(t, "/cashcards/102", location)

		getResp, _ := asSarah(t, http.MethodGet, location, nil)
		assert.Equal(t, http.StatusOK, getResp.StatusCode)

		johnResp, _ := makeRequest(t, "john2", "xyz789", http.MethodGet, location, nil)
		assert.Equal(t, http.StatusNotFound, johnResp.StatusCode)

		delResp, _ := asSarah(t, http.MethodDelete, location, nil)
		assert.Equal(t, http.StatusNoContent, delResp.StatusCode)
	})

	t.Run("MissingAmount", func(t *testing.T) {
		resp, _ := asSarah(t, http.MethodPost, "/cashcards", strings.NewReader(`{}`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		resp, _ := asSarah(t, http.MethodPost, "/cashcards", strings.NewReader(`{"amount":`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAuthenticationIntegration(t *testing.T) {
	t.Run("UnknownUser", func(t *testing.T) {
		resp, body := makeRequest(t, "BAD-USER", "abc123", http.MethodGet, "/cashcards/99", nil)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Empty(t, body)
		assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")
	})

	t.Run("WrongPassword", func(t *testing.T) {
		resp, body := makeRequest(t, "sarah1", "BAD-PASSWORD", http.MethodGet, "/cashcards/99", nil)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Empty(t, body)
	})

	t.Run("NoCredentials", func(t *testing.T) {
		resp, _ := makeRequest(t, "", "", http.MethodGet, "/cashcards", nil)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("UserWithoutCardOwnerRole", func(t *testing.T) {
		resp, body := makeRequest(t, "hank-owns-no-cards", "qrs456", http.MethodGet, "/cashcards/99", nil)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Empty(t, body)
	})

	t.Run("RoleCheckedBeforeOwnership", func(t *testing.T) {
		resp, _ := makeRequest(t, "hank-owns-no-cards", "qrs456", http.MethodGet, "/cashcards/1000", nil)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestUpdateCashCardIntegration(t *testing.T) {
	t.Run("OwnedCard", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodPut, "/cashcards/99", strings.NewReader(`{"amount": 19.99}`))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, body)

		getResp, getBody := asSarah(t, http.MethodGet, "/cashcards/99", nil)
		assert.Equal(t, http.StatusOK, getResp.StatusCode)
		var card cardBody
		require.NoError(t, json.Unmarshal([]byte(getBody), &card))
		assert.Equal(t, int64(99), card.ID)
		assert.Equal(t, "19.99", card.Amount.StringFixed(2))

		restore, _ := asSarah(t, http.MethodPut, "/cashcards/99", strings.NewReader(`{"amount": 123.45}`))
		assert.Equal(t, http.StatusNoContent, restore.StatusCode)
	})

	t.Run("UnknownID", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodPut, "/cashcards/99999", strings.NewReader(`{"amount": 19.99}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Empty(t, body)
	})

	t.Run("CardOwnedBySomeoneElse", func(t *testing.T) {
		resp, _ := asSarah(t, http.MethodPut, "/cashcards/102", strings.NewReader(`{"amount": 333.33}`))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		johnResp, johnBody := makeRequest(t, "john2", "xyz789", http.MethodGet, "/cashcards/102", nil)
		assert.Equal(t, http.StatusOK, johnResp.StatusCode)
		var card cardBody
		require.NoError(t, json.Unmarshal([]byte(johnBody), &card))
		assert.Equal(t, "200.00", card.Amount.StringFixed(2))
	})
}

func TestDeleteCashCardIntegration(t *testing.T) {
	t.Run("UnknownID", func(t *testing.T) {
		resp, body := asSarah(t, http.MethodDelete, "/cashcards/99999", nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Empty(t, body)
	})

	t.Run("CardOwnedBySomeoneElse", func(t *testing.T) {
		resp, _ := asSarah(t, http.MethodDelete, "/cashcards/102", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		johnResp, _ := makeRequest(t, "john2", "xyz789", http.MethodGet, "/cashcards/102", nil)
		assert.Equal(t, http.StatusOK, johnResp.StatusCode)
	})

	t.Run("OwnedCard", func(t *testing.T) {
		createResp, _ := asSarah(t, http.MethodPost, "/cashcards", strings.NewReader(`{"amount": 42}`))
		require.Equal(t, http.StatusCreated, createResp.StatusCode)
		location := createResp.Header.Get("Location")

		resp, body := asSarah(t, http.MethodDelete, location, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, body)

		getResp, _ := asSarah(t, http.MethodGet, location, nil)
		assert.Equal(t, http.StatusNotFound, getResp.StatusCode)

		again, _ := asSarah(t, http.MethodDelete, location, nil)
		assert.Equal(t, http.StatusNotFound, again.StatusCode)
	})
}

func TestProbesIntegration(t *testing.T) {
	for _, path := range []string{"/health", "/ready", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			resp, _ := makeRequest(t, "", "", http.MethodGet, path, nil)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}
