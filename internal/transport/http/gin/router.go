package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kisan-sangraha/sangraha-go/internal/domain"
	"github.com/kisan-sangraha/sangraha-go/internal/repository"
	redisrepo "github.com/kisan-sangraha/sangraha-go/internal/repository/redis"
	"github.com/kisan-sangraha/sangraha-go/internal/service"
	authsvc "github.com/kisan-sangraha/sangraha-go/internal/service/auth"
	"github.com/kisan-sangraha/sangraha-go/internal/service/booking"
	"github.com/kisan-sangraha/sangraha-go/internal/service/facility"
)

func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.POST("/auth/register", handleRegister(svcs))
	r.POST("/auth/login", handleLogin(svcs))

	r.GET("/facilities", handleListFacilities(svcs))
	r.GET("/facilities/:id", handleGetFacility(svcs))

	r.GET("/insights", handleListInsights(svcs))
	r.GET("/weather", handleGetWeather(svcs))

	// Authenticated API
	authed := r.Group("/", TokenAuth(svcs.Auth.Secret()))
	{
		authed.GET("/auth/me", handleMe(svcs))

		authed.POST("/facilities", handleRegisterFacility(svcs))
		authed.PUT("/facilities/:id", handleUpdateFacility(svcs))

		authed.POST("/bookings", handleCreateBooking(svcs, idem))
		authed.GET("/bookings", handleListBookings(svcs))
		authed.GET("/bookings/:id", handleGetBooking(svcs))
		authed.PUT("/bookings/:id/status", handleSetBookingStatus(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Register user
// @Param    req body  RegisterRequest true "payload"
// @Success  201 {object} AuthResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "username taken"
// @Router   /auth/register [post]
func handleRegister(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		user, token, err := svcs.Auth.Register(
			c.Request.Context(),
			req.Username,
			req.Password,
			domain.Role(req.Role),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
	}
}

// @Summary  Login
// @Param    req body  LoginRequest true "payload"
// @Success  200 {object} AuthResponse
// @Failure  401 {object} ErrorResponse
// @Router   /auth/login [post]
func handleLogin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		user, token, err := svcs.Auth.Login(
			c.Request.Context(),
			req.Username,
			req.Password,
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
	}
}

// @Summary  Current user
// @Success  200 {object} domain.User
// @Failure  401 {object} ErrorResponse
// @Router   /auth/me [get]
func handleMe(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		user, err := svcs.Auth.Me(c.Request.Context(), identity)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// @Summary  List facilities
// @Param    owner_id  query  string  false  "filter by owner id"
// @Success  200  {array}  domain.Facility
// @Router   /facilities [get]
func handleListFacilities(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		facilities, err := svcs.Facility.List(c.Request.Context(), c.Query("owner_id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 15s (lists change on every approval)
		writeJSONWithCache(c, http.StatusOK, facilities, "public, max-age=15", true)
	}
}

// @Summary  Get facility
// @Param    id  path  string  true  "Facility ID"
// @Success  200  {object}  domain.Facility
// @Failure  404  {object}  ErrorResponse
// @Router   /facilities/{id} [get]
func handleGetFacility(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := svcs.Facility.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, f, "public, max-age=15", true)
	}
}

// @Summary  Register facility (providers only)
// @Param    req body  RegisterFacilityRequest true "payload"
// @Success  201 {object} domain.Facility
// @Failure  403 {object} ErrorResponse
// @Router   /facilities [post]
func handleRegisterFacility(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		var req RegisterFacilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		f, err := svcs.Facility.Register(c.Request.Context(), identity, facility.RegisterRequest{
			Name:             req.Name,
			Location:         req.Location,
			Distance:         req.Distance,
			Type:             req.Type,
			PricePerKgPerDay: req.PricePerKgPerDay,
			TotalCapacity:    req.TotalCapacity,
			ContactPhone:     req.ContactPhone,
			OperatingHours:   req.OperatingHours,
			MinBookingDays:   req.MinBookingDays,
			Certifications:   req.Certifications,
			Amenities:        req.Amenities,
			ImageURL:         req.ImageURL,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, f)
	}
}

// @Summary  Update facility (owner only)
// @Param    id  path  string  true  "Facility ID"
// @Param    req body  UpdateFacilityRequest true "payload"
// @Success  200 {object} domain.Facility
// @Failure  403 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /facilities/{id} [put]
func handleUpdateFacility(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		var req UpdateFacilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		f, err := svcs.Facility.Update(c.Request.Context(), identity, c.Param("id"), facility.UpdateRequest{
			Name:              req.Name,
			Location:          req.Location,
			PricePerKgPerDay:  req.PricePerKgPerDay,
			TotalCapacity:     req.TotalCapacity,
			AvailableCapacity: req.AvailableCapacity,
			MinBookingDays:    req.MinBookingDays,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, f)
	}
}

// @Summary  Create booking (idempotent)
// @Param    req body  CreateBookingRequest true "payload"
// @Header   201 {string} Idempotency-Key "echo"
// @Success  201 {object} domain.Booking
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "capacity exceeded / idem in progress"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /bookings [post]
func handleCreateBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		if identity.Role != domain.RoleFarmer {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "only farmers can book storage"})
			return
		}
		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(identity.UserID, idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					c.Header("Idempotency-Key", idemKey)
					c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		rlKey := "ip:" + c.ClientIP()

		b, err := svcs.Booking.Create(c.Request.Context(), identity.UserID, booking.CreateRequest{
			FacilityID:      req.FacilityID,
			Quantity:        req.Quantity,
			Duration:        req.Duration,
			StorageCategory: req.StorageCategory,
			StorageType:     req.StorageType,
		}, rlKey)
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			if errors.Is(err, booking.ErrRateLimited) {
				c.Header("Retry-After", "60")
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
			respondErr(c, err)
			return
		}

		if idemStorageKey != "" && idem != nil {
			raw, _ := json.Marshal(b)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(raw))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, b)
	}
}

// @Summary  List bookings for the caller
// @Success  200 {array} domain.Booking
// @Router   /bookings [get]
func handleListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		bookings, err := svcs.Booking.ListForUser(c.Request.Context(), identity)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
	}
}

// @Summary  Get booking
// @Param    id  path  string  true  "Booking ID"
// @Success  200 {object} domain.Booking
// @Failure  404 {object} ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		b, err := svcs.Booking.Get(c.Request.Context(), identity, c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Change booking status (facility owner only)
// @Param    id  path  string  true  "Booking ID"
// @Param    req body  SetBookingStatusRequest true "payload"
// @Success  200 {object} domain.Booking
// @Failure  403 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "invalid transition / insufficient capacity"
// @Router   /bookings/{id}/status [put]
func handleSetBookingStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := identityFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
			return
		}
		var req SetBookingStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		b, err := svcs.Booking.SetStatus(
			c.Request.Context(),
			identity,
			c.Param("id"),
			domain.BookingStatus(req.Status),
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Storage insights
// @Success  200 {array} domain.Insight
// @Router   /insights [get]
func handleListInsights(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		insights, err := svcs.Insight.List(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		// ETag + Cache-Control 60s
		writeJSONWithCache(c, http.StatusOK, insights, "public, max-age=60", true)
	}
}

// @Summary  Weather snapshot
// @Success  200 {object} domain.Weather
// @Router   /weather [get]
func handleGetWeather(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		w := svcs.Insight.Weather(c.Request.Context())
		writeJSONWithCache(c, http.StatusOK, w, "public, max-age=300", true)
	}
}

// --- Helpers ---

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// auth service
	case errors.Is(err, authsvc.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid credentials payload"})
		return
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid username or password"})
		return
	case errors.Is(err, authsvc.ErrUsernameTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "username already taken"})
		return
	case errors.Is(err, authsvc.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		return
	// facility service
	case errors.Is(err, facility.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid facility payload"})
		return
	case errors.Is(err, facility.ErrPriceOutOfRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "price must be positive"})
		return
	case errors.Is(err, facility.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not the facility owner"})
		return
	case errors.Is(err, facility.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "facility not found"})
		return
	// booking service
	case errors.Is(err, booking.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid booking payload"})
		return
	case errors.Is(err, booking.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not allowed"})
		return
	case errors.Is(err, booking.ErrFacilityNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "facility not found"})
		return
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, booking.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "requested quantity exceeds available capacity"})
		return
	case errors.Is(err, booking.ErrInsufficientCapacity):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "insufficient capacity"})
		return
	case errors.Is(err, booking.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "invalid status transition"})
		return
	case errors.Is(err, booking.ErrRateLimited):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
		return
	// infrastructure
	case errors.Is(err, repository.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
