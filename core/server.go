package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aiwolfdial/storyteller-server/logic"
	"github.com/aiwolfdial/storyteller-server/model"
	"github.com/aiwolfdial/storyteller-server/service"
	"github.com/aiwolfdial/storyteller-server/util"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

const (
	devSecret        = "storyteller-dev-secret"
	claimsKey        = "viewer_claims"
	handleKey        = "session_handle"
	qrCodeSize       = 256
	wsWriteTimeout   = 10 * time.Second
	wsSendBufferSize = 16
)

type Server struct {
	config              model.Config
	secret              string
	upgrader            websocket.Upgrader
	store               *service.SessionStore
	realtimeBroadcaster *service.RealtimeBroadcaster
	catalog             *model.Catalog
	rooms               *Rooms
	mu                  sync.RWMutex
	signaled            bool
}

func NewServer(config model.Config) (*Server, error) {
	catalog, err := model.LoadCatalogFromPath(config.Game.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	store, err := service.OpenSessionStore(config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	server := &Server{
		config: config,
		secret: config.Server.Authentication.Secret,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		store:   store,
		catalog: catalog,
	}
	if server.secret == "" {
		slog.Warn("署名鍵が設定されていないため、開発用の鍵を使用します")
		server.secret = devSecret
	}
	if config.RealtimeBroadcaster.Enable {
		server.realtimeBroadcaster = service.NewRealtimeBroadcaster(config)
	}
	server.rooms = NewRooms(config, service.NewRelay(store, server.realtimeBroadcaster), catalog)
	if config.JSONLogger.Enable {
		server.rooms.SetJSONLogger(service.NewJSONLogger(config))
	}
	if config.GameLogger.Enable {
		server.rooms.SetGameLogger(service.NewGameLogger(config))
	}
	return server, nil
}

// Router は API のルーティングを組み立てる
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		c.Header("Server", "storyteller-server/"+Version.Version+" "+runtime.Version()+" ("+runtime.GOOS+"; "+runtime.GOARCH+")")

		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Ngrok-Skip-Browser-Warning")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version.String(), "rooms": s.rooms.Count()})
	})

	api := router.Group("/api/rooms")
	api.POST("", s.handleCreateRoom)
	api.POST("/:code/join", s.handleJoinRoom)
	api.GET("/:code/qr", s.handleQRCode)

	authed := api.Group("/:code", s.verifyMiddleware(), s.roomMiddleware())
	authed.GET("", s.handleGetRoom)
	authed.GET("/ws", s.handleConnections)
	authed.POST("/rpc/:op", s.handleRPC)
	authed.POST("/commands", s.storytellerOnly(), s.handleCommand)
	authed.DELETE("", s.storytellerOnly(), s.handleDeleteRoom)
	return router
}

func (s *Server) Run() {
	router := s.Router()
	addr := s.config.Server.Host + ":" + strconv.Itoa(s.config.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: router}

	go func() {
		trap := make(chan os.Signal, 1)
		signal.Notify(trap, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT)
		sig := <-trap
		slog.Info("シグナルを受信しました", "signal", sig)
		s.mu.Lock()
		s.signaled = true
		s.mu.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("サーバの停止に失敗しました", "error", err)
		}
	}()

	slog.Info("サーバを起動しました", "host", s.config.Server.Host, "port", s.config.Server.Port)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("サーバの起動に失敗しました", "error", err)
	}
	s.gracefullyShutdown()
}

func (s *Server) gracefullyShutdown() {
	s.rooms.CloseAll()
	if err := s.store.Close(); err != nil {
		slog.Error("データベースのクローズに失敗しました", "error", err)
	}
	slog.Info("全ての部屋の送信が完了しました")
}

func (s *Server) isSignaled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signaled
}

func (s *Server) joinURL(code string) string {
	base := s.config.Server.PublicURL
	if base == "" {
		base = "http://" + s.config.Server.Host + ":" + strconv.Itoa(s.config.Server.Port)
	}
	return strings.TrimSuffix(base, "/") + "/join/" + code
}

func (s *Server) issue(code string, userID string, role string) (string, error) {
	return util.IssueToken(s.secret, code, userID, role, s.config.Server.Authentication.TokenTTL)
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, model.RPCFail(message))
}

type createRoomRequest struct {
	SeatCount int    `json:"seatCount"`
	ScriptID  string `json:"scriptId"`
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	if s.isSignaled() {
		fail(c, http.StatusServiceUnavailable, "サーバは停止中です")
		return
	}
	var req createRoomRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "リクエストが不正です")
			return
		}
	}
	handle, err := s.rooms.Create(c.Request.Context(), req.SeatCount, req.ScriptID)
	if err != nil {
		slog.Error("部屋の作成に失敗しました", "error", err)
		fail(c, http.StatusInternalServerError, "部屋の作成に失敗しました")
		return
	}
	userID := util.NewUserID()
	token, err := s.issue(handle.RoomID(), userID, util.TokenRoleStoryteller)
	if err != nil {
		slog.Error("トークンの発行に失敗しました", "error", err)
		fail(c, http.StatusInternalServerError, "トークンの発行に失敗しました")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":    handle.RoomID(),
		"userId":  userID,
		"token":   token,
		"joinUrl": s.joinURL(handle.RoomID()),
	})
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	exists, err := s.store.RoomExists(c.Request.Context(), code)
	if err != nil {
		slog.Error("部屋の確認に失敗しました", "code", code, "error", err)
		fail(c, http.StatusInternalServerError, "部屋の確認に失敗しました")
		return
	}
	if !exists {
		fail(c, http.StatusNotFound, "部屋が見つかりません")
		return
	}
	userID := util.NewUserID()
	token, err := s.issue(code, userID, util.TokenRolePlayer)
	if err != nil {
		slog.Error("トークンの発行に失敗しました", "error", err)
		fail(c, http.StatusInternalServerError, "トークンの発行に失敗しました")
		return
	}
	slog.Info("参加者が部屋に参加しました", "code", code, "user", userID)
	c.JSON(http.StatusOK, gin.H{"code": code, "userId": userID, "token": token})
}

func (s *Server) handleQRCode(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	png, err := qrcode.Encode(s.joinURL(code), qrcode.Medium, qrCodeSize)
	if err != nil {
		slog.Error("QRコードの生成に失敗しました", "code", code, "error", err)
		fail(c, http.StatusInternalServerError, "QRコードの生成に失敗しました")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) filteredSession(handle *SessionHandle, claims util.ViewerClaims) *model.Session {
	var filtered *model.Session
	handle.View(func(session *model.Session) {
		filtered = logic.FilterGameStateForUser(session, claims.UserID, claims.IsStoryteller(), s.catalog)
	})
	return filtered
}

func (s *Server) handleGetRoom(c *gin.Context) {
	claims := c.MustGet(claimsKey).(util.ViewerClaims)
	handle := c.MustGet(handleKey).(*SessionHandle)
	c.JSON(http.StatusOK, model.Packet{
		Type:          model.PT_SNAPSHOT,
		Session:       s.filteredSession(handle, claims),
		IsStoryteller: claims.IsStoryteller(),
	})
}

func (s *Server) handleRPC(c *gin.Context) {
	claims := c.MustGet(claimsKey).(util.ViewerClaims)
	handle := c.MustGet(handleKey).(*SessionHandle)
	var req model.RPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "リクエストが不正です")
		return
	}
	var result model.RPCResult
	err := handle.Do(func(g *logic.Game) {
		result = HandleRPC(g, claims, model.RPCOperation(c.Param("op")), req)
	})
	if err != nil {
		fail(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCommand(c *gin.Context) {
	handle := c.MustGet(handleKey).(*SessionHandle)
	var cmd model.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		fail(c, http.StatusBadRequest, "リクエストが不正です")
		return
	}
	var cmdErr error
	if err := handle.Do(func(g *logic.Game) {
		cmdErr = ApplyCommand(g, cmd)
	}); err != nil {
		fail(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	if cmdErr != nil {
		fail(c, http.StatusBadRequest, cmdErr.Error())
		return
	}
	c.JSON(http.StatusOK, model.RPCOk())
}

func (s *Server) handleDeleteRoom(c *gin.Context) {
	handle := c.MustGet(handleKey).(*SessionHandle)
	if err := s.rooms.Delete(c.Request.Context(), handle.RoomID()); err != nil {
		slog.Error("部屋の削除に失敗しました", "code", handle.RoomID(), "error", err)
		fail(c, http.StatusInternalServerError, "部屋の削除に失敗しました")
		return
	}
	c.JSON(http.StatusOK, model.RPCOk())
}

// handleConnections は閲覧者ごとに絞り込んだ状態を変更のたびに送る
func (s *Server) handleConnections(c *gin.Context) {
	if s.isSignaled() {
		slog.Warn("シグナルを受信したため、新しい接続を受け付けません")
		fail(c, http.StatusServiceUnavailable, "サーバは停止中です")
		return
	}
	claims := c.MustGet(claimsKey).(util.ViewerClaims)
	handle := c.MustGet(handleKey).(*SessionHandle)
	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("クライアントのアップグレードに失敗しました", "error", err)
		return
	}
	connID := util.NewUserID()
	send := make(chan model.Packet, wsSendBufferSize)
	done := make(chan struct{})

	enqueue := func(packet model.Packet) {
		select {
		case send <- packet:
		case <-done:
		default:
			slog.Warn("送信バッファが溢れたため更新を破棄しました", "room", handle.RoomID(), "conn", connID)
		}
	}
	removeListener := handle.AddListener(func(snapshot *model.Session) {
		enqueue(model.Packet{
			Type:          model.PT_SNAPSHOT,
			Session:       logic.FilterGameStateForUser(snapshot, claims.UserID, claims.IsStoryteller(), s.catalog),
			IsStoryteller: claims.IsStoryteller(),
		})
	})
	enqueue(model.Packet{
		Type:          model.PT_SNAPSHOT,
		Session:       s.filteredSession(handle, claims),
		IsStoryteller: claims.IsStoryteller(),
	})
	slog.Info("閲覧者が接続しました", "room", handle.RoomID(), "conn", connID, "user", claims.UserID, "storyteller", claims.IsStoryteller())

	go func() {
		defer ws.Close()
		for {
			select {
			case packet := <-send:
				ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := ws.WriteJSON(packet); err != nil {
					slog.Warn("閲覧者への送信に失敗しました", "conn", connID, "error", err)
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	removeListener()
	close(done)
	slog.Info("閲覧者が切断しました", "room", handle.RoomID(), "conn", connID)
}

func (s *Server) verifyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.ReplaceAll(c.GetHeader("Authorization"), "Bearer ", "")
		}
		if token == "" {
			fail(c, http.StatusUnauthorized, "トークンがありません")
			return
		}
		claims, err := util.ParseToken(s.secret, token)
		if err != nil {
			fail(c, http.StatusUnauthorized, err.Error())
			return
		}
		if claims.Room != strings.ToUpper(c.Param("code")) {
			slog.Warn("部屋の異なるトークンです", "room", c.Param("code"), "token_room", claims.Room)
			fail(c, http.StatusUnauthorized, util.ErrInvalidToken.Error())
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func (s *Server) roomMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		handle, err := s.rooms.Get(c.Request.Context(), strings.ToUpper(c.Param("code")))
		if errors.Is(err, service.ErrRoomNotFound) {
			fail(c, http.StatusNotFound, "部屋が見つかりません")
			return
		}
		if err != nil {
			slog.Error("部屋の読み込みに失敗しました", "code", c.Param("code"), "error", err)
			fail(c, http.StatusInternalServerError, "部屋の読み込みに失敗しました")
			return
		}
		c.Set(handleKey, handle)
		c.Next()
	}
}

func (s *Server) storytellerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := c.MustGet(claimsKey).(util.ViewerClaims)
		if !claims.IsStoryteller() {
			fail(c, http.StatusForbidden, "語り部のみが実行できます")
			return
		}
		c.Next()
	}
}
