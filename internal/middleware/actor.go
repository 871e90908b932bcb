// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strconv"
)

// ActorHeader names the user a request acts on behalf of. It is only
// honoured behind a proxy that authenticates callers and sets it.
const ActorHeader = "X-Actor-ID"

// Actor stores the acting user id from ActorHeader in the request context
// when trust is true. A malformed header is rejected with 400. When trust
// is false the header is ignored and requests are anonymous.
func Actor(trust bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(ActorHeader)
			if !trust || raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				writeError(w, http.StatusBadRequest, "invalid "+ActorHeader+" header")
				return
			}
			ctx := context.WithValue(r.Context(), actorKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromCtx returns the acting user id, or nil for anonymous requests.
func ActorFromCtx(ctx context.Context) *int64 {
	id, ok := ctx.Value(actorKey).(int64)
	if !ok {
		return nil
	}
	return &id
}
