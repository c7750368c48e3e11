/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package nager

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/holidaykeeper/types"
)

func newTestClient(url string) *Client {
	return New(Config{
		BaseURL:      url,
		MaxRetries:   2,
		RetryInitial: time.Millisecond,
		RetryMax:     5 * time.Millisecond,
	})
}

func TestPublicHolidays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PublicHolidays/2025/KR", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date":"2025-01-01","localName":"새해","name":"New Year's Day","countryCode":"KR","fixed":true,"global":true,"counties":null,"launchYear":null,"types":["Public"]},
			{"date":"2025-03-01","localName":"삼일절","name":"Independence Movement Day","countryCode":"KR","fixed":true,"global":true,"counties":["KR-11"],"launchYear":1949,"types":["Public","Bank"]}
		]`))
	}))
	defer srv.Close()

	holidays, err := newTestClient(srv.URL).PublicHolidays(context.Background(), "kr", 2025)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, "New Year's Day", holidays[0].Name)
	require.NotNil(t, holidays[1].LaunchYear)
	assert.Equal(t, 1949, *holidays[1].LaunchYear)

	h, err := holidays[1].ToHoliday("KR")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", h.Date.String())
	assert.Equal(t, types.StringList{"Public", "Bank"}, h.Types)
	assert.Equal(t, types.StringList{"KR-11"}, h.Subdivisions)
}

func TestNoContentIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	holidays, err := newTestClient(srv.URL).PublicHolidays(context.Background(), "AQ", 2024)
	require.NoError(t, err)
	assert.Empty(t, holidays)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"countryCode":"DE","name":"Germany"}]`))
	}))
	defer srv.Close()

	countries, err := newTestClient(srv.URL).AvailableCountries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, countries, 1)
	assert.Equal(t, "DE", countries[0].ToCountry().Code)
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).PublicHolidays(context.Background(), "XX", 2024)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrRemoteFetch)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
}

func TestErrorBodyIsTrimmedOnRuneBoundary(t *testing.T) {
	body := "x" + strings.Repeat("é", 150)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, body, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).PublicHolidays(context.Background(), "FR", 2024)
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.True(t, utf8.ValidString(serr.Body))
	assert.True(t, strings.HasSuffix(serr.Body, "..."))
	assert.True(t, strings.HasPrefix(body, strings.TrimSuffix(serr.Body, "...")))
	assert.LessOrEqual(t, len(serr.Body), maxSnippetBytes+len("..."))
	assert.True(t, utf8.ValidString(err.Error()))
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).PublicHolidays(context.Background(), "KR", 2024)
	assert.ErrorIs(t, err, types.ErrRemoteFetch)
}

func TestDeadlineExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newTestClient(srv.URL).PublicHolidays(ctx, "KR", 2024)
	assert.ErrorIs(t, err, types.ErrRemoteFetch)
	assert.Less(t, time.Since(start), time.Second)
}
