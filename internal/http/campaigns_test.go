package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCampaignShowsOnDashboard(t *testing.T) {
	h := newHarness(t)
	_, sid := h.signIn(t, "christopher@andela.co")

	form := url.Values{
		"title":       {"Laptops for Lagos"},
		"amount":      {"2500"},
		"deadline":    {time.Now().AddDate(0, 0, 14).Format("2006-01-02")},
		"description": {"Ten refurbished laptops."},
	}
	resp, _ := h.post(t, "/campaigns", sid, form)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/campaigns/"), loc)

	resp, body := h.get(t, loc, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Laptops for Lagos")
	assert.Contains(t, body, "by Christopher Jones")
	assert.Contains(t, body, "Goal: $ 2500")

	_, body = h.get(t, "/my_andonation", sid)
	assert.Contains(t, body, "Laptops for Lagos")
	assert.NotContains(t, body, "You have no active campaigns currently running")

	_, body = h.get(t, "/", "")
	assert.Contains(t, body, "Laptops for Lagos")
	assert.Contains(t, body, `href="/auth/google_oauth2"`)
}

func TestCreateCampaignRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	_, sid := h.signIn(t, "christopher@andela.co")

	form := url.Values{
		"title":    {""},
		"amount":   {"-5"},
		"deadline": {"2001-01-01"},
	}
	resp, body := h.post(t, "/campaigns", sid, form)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Title is required")
	assert.Contains(t, body, "Goal must be a positive amount")
	assert.Contains(t, body, "not in the past")

	_, body = h.get(t, "/my_andonation", sid)
	assert.Contains(t, body, "You have no active campaigns currently running")
}

func TestCampaignPagesNeedSignInAndKnownIDs(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.get(t, "/campaigns/new", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	resp, _ = h.get(t, "/campaigns/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
