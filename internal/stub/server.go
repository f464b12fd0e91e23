// Package stub hosts a wire-compatible stand-in for the remote user
// directory. It serves the same paginated collection contract the real
// endpoint does, so the client is exercisable offline and in tests.
package stub

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"userdir/internal/domain/user"
)

// Server is an in-memory remote user directory.
type Server struct {
	mu     sync.Mutex
	users  []user.User
	nextID int64
	log    *zap.Logger
	engine *gin.Engine
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// New creates a stub server seeded with the given users.
func New(seed []user.User, log *zap.Logger) *Server {
	s := &Server{
		users:  append([]user.User(nil), seed...),
		nextID: 1,
		log:    log,
	}
	for _, u := range seed {
		if u.ID >= s.nextID {
			s.nextID = u.ID + 1
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "userdir-stub"})
	})

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.GET("", s.listUsers)
			users.POST("", s.createUser)
			users.PUT("/:id", s.updateUser)
			users.DELETE("/:id", s.deleteUser)
		}
	}

	s.engine = router
	return s
}

// Seed generates n deterministic users, useful for demos and tests.
func Seed(n int) []user.User {
	users := make([]user.User, n)
	for i := range users {
		id := int64(i + 1)
		users[i] = user.User{
			ID:        id,
			Email:     fmt.Sprintf("user%d@example.com", id),
			FirstName: fmt.Sprintf("First%d", id),
			LastName:  fmt.Sprintf("Last%d", id),
			Avatar:    user.DefaultAvatar,
		}
	}
	return users
}

// Handler returns the HTTP handler, for mounting under httptest or a
// real listener.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info("stub server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

// listUsers handles GET /api/users?page=N&per_page=K. A response with
// fewer than per_page items signals the last page.
func (s *Server) listUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "6"))
	if err != nil || perPage < 1 {
		perPage = 6
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.users)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	data := append([]user.User(nil), s.users[start:end]...)
	totalPages := (total + perPage - 1) / perPage

	c.JSON(http.StatusOK, gin.H{
		"page":        page,
		"per_page":    perPage,
		"total":       total,
		"total_pages": totalPages,
		"data":        data,
	})
}

// createUser handles POST /api/users. Like the real endpoint it echoes
// the accepted fields but assigns no id.
func (s *Server) createUser(c *gin.Context) {
	var u user.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	stored := u
	stored.ID = s.nextID
	s.nextID++
	s.users = append(s.users, stored)
	s.mu.Unlock()

	s.log.Debug("stub created user", zap.String("email", u.Email))

	u.ID = 0
	c.JSON(http.StatusCreated, u)
}

// updateUser handles PUT /api/users/:id, returning only the mutable
// fields it accepted.
func (s *Server) updateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user id must be a number"})
		return
	}

	var u user.User
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].FirstName = u.FirstName
			s.users[i].LastName = u.LastName
			s.users[i].Email = u.Email
			break
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
	})
}

// deleteUser handles DELETE /api/users/:id.
func (s *Server) deleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user id must be a number"})
		return
	}

	s.mu.Lock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	c.Status(http.StatusNoContent)
}
