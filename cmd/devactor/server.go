package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/jrsteele09/go-actor-client/actor/actorfake"
	"github.com/jrsteele09/go-actor-client/actor/httptransport"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

const principalKey = "principal"

type callRequest struct {
	Args []json.RawMessage `json:"args"`
}

// newServer exposes remote at the actor gateway routes for actorID.
func newServer(remote *actorfake.Actor, actorID string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		TargetHeader: httptransport.RequestIDHeader,
	}))

	authn := authenticate(actorID)
	e.POST(httptransport.CallPath(":actor", ":op"), func(c echo.Context) error {
		if c.Param("actor") != actorID {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown actor"})
		}
		op := c.Param("op")
		if _, ok := actor.LookupOperation(op); !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown operation"})
		}

		var req callRequest
		if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid call body"})
		}

		principal, _ := c.Get(principalKey).(string)
		logger := log.With().
			Str("op", op).
			Str("request_id", c.Response().Header().Get(httptransport.RequestIDHeader)).
			Bool("anonymous", principal == "").
			Logger()

		out, err := remote.Handle(principal, op, req.Args)
		if err != nil {
			logger.Warn().Err(err).Msg("Call rejected")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		logger.Debug().Msg("Call handled")
		return c.JSONBlob(http.StatusOK, out)
	}, authn)
	return e
}

// authenticate resolves the caller from the Bearer call token. Requests without
// a token are anonymous; requests with an invalid token are rejected.
func authenticate(actorID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}
			authType, token, found := strings.Cut(header, " ")
			if !found || authType != "Bearer" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "only Bearer is acceptable"})
			}
			claims, err := actor.VerifyCallToken(token, actorID)
			if err != nil {
				log.Warn().Err(err).Msg("Invalid call token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid call token"})
			}
			if claims.Operation != c.Param("op") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token issued for another operation"})
			}
			c.Set(principalKey, claims.Subject)
			return next(c)
		}
	}
}
