package shell

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shiplabel-dev/shiplabel/internal/client"
	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/router"
	"github.com/shiplabel-dev/shiplabel/internal/session"
	"github.com/shiplabel-dev/shiplabel/internal/validation"
)

// SessionView is the session as pages see it. Error is null when there is none.
type SessionView struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	Loading         bool         `json:"loading"`
	Error           *string      `json:"error"`
}

func viewOf(s session.State) SessionView {
	v := SessionView{User: s.User, IsAuthenticated: s.IsAuthenticated, Loading: s.Loading}
	if s.Error != "" {
		msg := s.Error
		v.Error = &msg
	}
	return v
}

// PageResponse describes the page shown for a path
type PageResponse struct {
	Path    string      `json:"path"`
	Page    string      `json:"page"`
	Section string      `json:"section,omitempty"`
	Session SessionView `json:"session"`
	Data    any         `json:"data,omitempty"`
}

func (s *Server) resolution(c *gin.Context) router.Resolution {
	if res, ok := GetResolution(c); ok {
		return res
	}
	return s.app.Resolve(c.Request.URL.Path)
}

func (s *Server) respondPage(c *gin.Context, data any) {
	res := s.resolution(c)
	c.JSON(http.StatusOK, PageResponse{
		Path:    res.Path,
		Page:    res.Page,
		Section: res.Section,
		Session: viewOf(s.app.Session()),
		Data:    data,
	})
}

func (s *Server) page(c *gin.Context) {
	s.respondPage(c, nil)
}

func (s *Server) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, viewOf(s.app.Session()))
}

func (s *Server) notFound(c *gin.Context) {
	res := s.app.Resolve(c.Request.URL.Path)
	if res.Redirect != "" {
		c.Redirect(http.StatusFound, res.Redirect)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Page not found", "path": res.Path})
}

// sessionUser returns the signed-in user; guarded routes always have one
func (s *Server) sessionUser(c *gin.Context) (*models.User, bool) {
	st := s.app.Session()
	if !st.IsAuthenticated || st.User == nil {
		c.Redirect(http.StatusFound, router.PathLogin)
		c.Abort()
		return nil, false
	}
	return st.User, true
}

// statusOf maps an API call failure to the status the shell answers with
func statusOf(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

func (s *Server) apiFailed(c *gin.Context, err error, message string) {
	s.logger.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("API request failed")
	c.JSON(statusOf(err), gin.H{"message": message})
}

func (s *Server) invalidBody(c *gin.Context, err error) {
	s.logger.Debug().Err(err).Msg("Invalid request body")
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
}

// validationFailed reports form errors the way the forms show them
func (s *Server) validationFailed(c *gin.Context, err error) {
	var verr *validation.Errors
	if !errors.As(err, &verr) {
		s.logger.Error().Err(err).Msg("Validation failed unexpectedly")
		c.JSON(http.StatusInternalServerError, gin.H{"message": client.GenericFailureMessage})
		return
	}

	msg := verr.Messages[0]
	if len(verr.Messages) > 1 {
		msg = verr.Error()
	}
	s.app.Notifier.Error(msg)
	c.JSON(http.StatusBadRequest, gin.H{"message": msg, "errors": verr.Messages})
}

func (s *Server) login(c *gin.Context) {
	var form models.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		s.invalidBody(c, err)
		return
	}
	if err := validation.Login(form); err != nil {
		s.validationFailed(c, err)
		return
	}

	user, err := s.app.Auth.Login(c.Request.Context(), form)
	if err != nil {
		c.JSON(statusOf(err), gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "redirect": router.Landing(user)})
}

func (s *Server) register(c *gin.Context) {
	var form models.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		s.invalidBody(c, err)
		return
	}
	if err := validation.Register(form); err != nil {
		s.validationFailed(c, err)
		return
	}

	if err := s.app.Auth.Register(c.Request.Context(), form); err != nil {
		c.JSON(statusOf(err), gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"redirect": router.AfterRegister})
}

func (s *Server) logout(c *gin.Context) {
	if err := s.app.Auth.Logout(c.Request.Context()); err != nil {
		c.JSON(statusOf(err), gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": router.PathLogin})
}

func (s *Server) ordersPage(c *gin.Context) {
	user, ok := s.sessionUser(c)
	if !ok {
		return
	}

	orders, err := s.app.Client.ListOrders(c.Request.Context(), user.ID)
	if err != nil {
		s.apiFailed(c, err, "Failed to fetch orders.")
		return
	}
	s.respondPage(c, gin.H{"orders": orders})
}

func (s *Server) orderLabelPage(c *gin.Context) {
	services, err := s.app.Client.ShipmentServices(c.Request.Context())
	if err != nil {
		s.apiFailed(c, err, client.Message(err))
		return
	}
	s.respondPage(c, gin.H{"services": services, "form": models.NewShipmentForm()})
}

func (s *Server) createShipment(c *gin.Context) {
	user, ok := s.sessionUser(c)
	if !ok {
		return
	}

	form := models.NewShipmentForm()
	if err := c.ShouldBindJSON(&form); err != nil {
		s.invalidBody(c, err)
		return
	}
	if err := validation.Shipment(form); err != nil {
		s.validationFailed(c, err)
		return
	}

	resp, err := s.app.Client.CreateShipment(c.Request.Context(), form, user.ID)
	if err != nil {
		msg := client.Message(err)
		s.app.Notifier.Error(msg)
		s.apiFailed(c, err, msg)
		return
	}

	s.app.Notifier.Success(resp.Message)
	c.JSON(http.StatusCreated, gin.H{"message": resp.Message})
}

func (s *Server) usersPage(c *gin.Context) {
	users, err := s.app.Client.ListUsers(c.Request.Context())
	if err != nil {
		s.apiFailed(c, err, client.GenericFailureMessage)
		return
	}
	s.respondPage(c, gin.H{"users": users})
}

func (s *Server) updateUser(c *gin.Context) {
	var req client.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.invalidBody(c, err)
		return
	}
	if req.Role == nil && req.HasAccess == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Nothing to update"})
		return
	}
	if req.Role != nil && !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
		return
	}

	resp, err := s.app.Client.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		msg := client.Message(err)
		s.app.Notifier.Error(msg)
		s.apiFailed(c, err, msg)
		return
	}

	s.app.Notifier.Success(resp.Message)
	c.JSON(http.StatusOK, gin.H{"message": resp.Message})
}

func (s *Server) deleteUser(c *gin.Context) {
	resp, err := s.app.Client.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		msg := client.Message(err)
		if msg == "" {
			msg = "Failed to delete user."
		}
		s.app.Notifier.Error(msg)
		s.apiFailed(c, err, msg)
		return
	}

	msg := resp.Message
	if msg == "" {
		msg = "User deleted successfully."
	}
	s.app.Notifier.Success(msg)
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
