package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/hermon-k/roomshare/backend/internal/middleware"
	"github.com/hermon-k/roomshare/backend/internal/models"
	"github.com/hermon-k/roomshare/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// RoomHandler handles HTTP requests related to room listings
type RoomHandler struct {
	roomRepository repositories.RoomRepository
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(roomRepo repositories.RoomRepository) *RoomHandler {
	return &RoomHandler{roomRepository: roomRepo}
}

// RegisterRoomRoutes registers room-related routes
func (h *RoomHandler) RegisterRoomRoutes(g *echo.Group) {
	g.GET("/rooms", h.ListAvailableRooms)
	g.GET("/rooms/:id", h.GetRoom)
	g.POST("/rooms", h.CreateRoom)
	g.GET("/rooms/mine", h.ListMyRooms)
}

// ListAvailableRooms returns all rooms open for matching
func (h *RoomHandler) ListAvailableRooms(c echo.Context) error {
	rooms, err := h.roomRepository.GetAvailableRooms()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) GetRoom(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid room ID")
	}
	room, err := h.roomRepository.GetRoomByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Room not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, room)
}

// CreateRoom publishes a new listing owned by the authenticated user
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	room := &models.Room{
		LandlordID:       userID,
		Title:            req.Title,
		MonthlyRent:      req.MonthlyRent,
		RoomType:         req.RoomType,
		MaxOccupants:     req.MaxOccupants,
		GenderPreference: req.GenderPreference,
		Address:          req.Address,
		City:             req.City,
		IsAvailable:      true,
		IsApproved:       true,
	}

	if err := h.roomRepository.CreateRoom(room); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, room)
}

// ListMyRooms returns the authenticated user's own listings
func (h *RoomHandler) ListMyRooms(c echo.Context) error {
	userID, err := middleware.UserIDFromContext(c)
	if err != nil {
		return err
	}

	rooms, err := h.roomRepository.GetRoomsByLandlord(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rooms)
}
