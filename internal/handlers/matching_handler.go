package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/hermon-k/roomshare/backend/internal/engine"
	"github.com/hermon-k/roomshare/backend/internal/middleware"
	"github.com/hermon-k/roomshare/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// MatchingHandler handles HTTP requests for group search and the group
// membership lifecycle.
type MatchingHandler struct {
	engine *engine.Engine
}

// NewMatchingHandler creates a new MatchingHandler
func NewMatchingHandler(eng *engine.Engine) *MatchingHandler {
	return &MatchingHandler{engine: eng}
}

// RegisterMatchingRoutes registers matching and group lifecycle routes
func (h *MatchingHandler) RegisterMatchingRoutes(g *echo.Group) {
	g.POST("/rooms/:roomId/matches", h.SearchGroups)
	g.POST("/rooms/:roomId/groups", h.CreateGroup)
	g.POST("/groups/:groupId/join", h.JoinGroup)
	g.POST("/groups/:groupId/leave", h.LeaveGroup)
	g.GET("/groups/my", h.MyGroups)
	g.POST("/matching/expire", h.ExpireOverdue)
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// SearchGroups returns the open groups on a room ranked for the
// authenticated user, or an offer to create a new group.
func (h *MatchingHandler) SearchGroups(c echo.Context) error {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		return err
	}
	roomID, err := paramID(c, "roomId")
	if err != nil {
		return err
	}

	var req models.SearchGroupsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.engine.SearchGroups(c.Request().Context(), roomID, userID, req)
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// CreateGroup opens a new forming group on a room with the caller as creator
func (h *MatchingHandler) CreateGroup(c echo.Context) error {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		return err
	}
	roomID, err := paramID(c, "roomId")
	if err != nil {
		return err
	}

	var req models.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.engine.CreateGroup(c.Request().Context(), roomID, userID, req)
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

// JoinGroup adds the caller to a forming group
func (h *MatchingHandler) JoinGroup(c echo.Context) error {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		return err
	}
	groupID, err := paramID(c, "groupId")
	if err != nil {
		return err
	}

	var req models.JoinGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.engine.JoinGroup(c.Request().Context(), groupID, userID, req)
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// LeaveGroup removes the caller's active membership from a group
func (h *MatchingHandler) LeaveGroup(c echo.Context) error {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		return err
	}
	groupID, err := paramID(c, "groupId")
	if err != nil {
		return err
	}

	if err := h.engine.LeaveGroup(c.Request().Context(), groupID, userID); err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MyGroups lists the caller's active and historical group memberships
func (h *MatchingHandler) MyGroups(c echo.Context) error {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		return err
	}

	views, err := h.engine.MyGroups(c.Request().Context(), userID)
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": views})
}

// ExpireOverdue runs a payment-deadline sweep on demand. The scheduler
// runs the same sweep periodically; this endpoint exists for operators.
func (h *MatchingHandler) ExpireOverdue(c echo.Context) error {
	result, err := h.engine.Sweep(c.Request().Context(), nil, nil)
	if err != nil {
		return engineHTTPError(err)
	}
	return c.JSON(http.StatusOK, result)
}
