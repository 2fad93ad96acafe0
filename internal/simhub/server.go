package simhub

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/FerryCalvin/antam-autoq/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server wires the REST surface and the push channel over gin.
type Server struct {
	logger  *zap.Logger
	fleet   *Fleet
	hub     *Hub
	tickets *TicketStore
	engine  *gin.Engine
}

func NewServer(fleet *Fleet, hub *Hub, tickets *TicketStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{
		logger:  logger,
		fleet:   fleet,
		hub:     hub,
		tickets: tickets,
		engine:  engine,
	}
	s.registerRoutes()
	return s
}

// Handler exposes the engine for http.Server and httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.GET("/nodes", s.listNodes)
	api.POST("/nodes", s.createNode)
	api.DELETE("/nodes/:id", s.deleteNode)
	api.POST("/nodes/:id/start", s.startNode)
	api.POST("/nodes/:id/stop", s.stopNode)
	api.GET("/tickets", s.listTickets)
	api.GET("/tickets/:filename", s.getTicket)

	s.engine.GET("/ws", s.serveWS)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) listNodes(c *gin.Context) {
	c.JSON(http.StatusOK, s.fleet.List())
}

func (s *Server) createNode(c *gin.Context) {
	var req model.CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.fleet.Create(req))
}

func (s *Server) deleteNode(c *gin.Context) {
	id, ok := s.nodeID(c)
	if !ok {
		return
	}
	if err := s.fleet.Delete(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Node not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Node deleted successfully"})
}

func (s *Server) startNode(c *gin.Context) {
	id, ok := s.nodeID(c)
	if !ok {
		return
	}
	if err := s.fleet.Start(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Node not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Started", "is_active": true, "status": statusHunting})
}

func (s *Server) stopNode(c *gin.Context) {
	id, ok := s.nodeID(c)
	if !ok {
		return
	}
	if err := s.fleet.Stop(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Node not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stopped", "is_active": false, "status": statusReady})
}

func (s *Server) listTickets(c *gin.Context) {
	tickets, err := s.tickets.List()
	if err != nil {
		s.logger.Warn("list tickets failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "ticket listing failed"})
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (s *Server) getTicket(c *gin.Context) {
	path := s.tickets.Path(c.Param("filename"))
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Ticket not found"})
		return
	}
	c.File(path)
}

func (s *Server) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.Register(conn)
	s.hub.Broadcast("[System] 🟢 Web panel connected successfully. Waiting for commands...")
}

func (s *Server) nodeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid node id"})
		return 0, false
	}
	return id, true
}
