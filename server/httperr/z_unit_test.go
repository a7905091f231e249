// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/quantro/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"deadline", errs.Wrap(context.DeadlineExceeded, "tick"), http.StatusGatewayTimeout},
		{"canceled", context.Canceled, http.StatusRequestTimeout},
		{"conflict", errs.Conflictf("merge %s into %s", "a", "b"), http.StatusConflict},
		{"wrapped conflict", errs.WrapWithExtra(errs.ErrMergeConflict, "land", "x=0"), http.StatusConflict},
		{"warn", errs.NewWarn("bad piece"), http.StatusBadRequest},
		{"parse", errs.Parsef("bad literal"), http.StatusBadRequest},
		{"fatal", errs.NewFatal("pool closed"), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("%s: expected %d, got %d", c.name, c.want, got)
		}
	}
}

func TestErrsBody(t *testing.T) {
	w := httptest.NewRecorder()
	Errs(w, errs.WrapWithExtra(errs.ErrMergeConflict, "land", "piece overlaps grid"))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var b Body
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.Status != http.StatusConflict || b.Level != "warn" || b.Error == "" {
		t.Fatalf("unexpected body %+v", b)
	}

	w = httptest.NewRecorder()
	Errs(w, nil)
	if w.Body.Len() != 0 {
		t.Fatalf("nil error must not write a body")
	}
}
