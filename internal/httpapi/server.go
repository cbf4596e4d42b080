package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/dcomatch/dcomatch/internal/config"
	"github.com/dcomatch/dcomatch/internal/db"
	"github.com/dcomatch/dcomatch/internal/globaltime"
)

const (
	defaultNovelLimit = 100
	maxNovelLimit     = 1000
)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	pool   *db.Pool
	cfg    *config.Config
	logger zerolog.Logger
	opts   Options
}

type orderItem struct {
	OrderID   int64  `json:"order_id"`
	OrderName string `json:"order_name"`
}

type orderYearGroup struct {
	Year   int         `json:"year"`
	Orders []orderItem `json:"orders"`
}

type articleItem struct {
	ArticleID     int64  `json:"article_id"`
	ArticleNumber string `json:"article_number"`
	ArticleTitle  string `json:"article_title"`
	Category      string `json:"category"`
	WordCount     int    `json:"word_count"`
	Language      string `json:"language,omitempty"`
	Novel         *bool  `json:"novel,omitempty"`
}

func NewServer(pool *db.Pool, cfg *config.Config, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8080
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		pool:   pool,
		cfg:    cfg,
		logger: logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.pool == nil || s.cfg == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/stats", s.handleStats)
	api.GET("/orders", s.handleOrders)
	api.GET("/orders/:order_id/articles", s.handleOrderArticles)
	api.GET("/articles/:article_id/similarities", s.handleArticleSimilarities)
	api.GET("/novel", s.handleNovel)
	api.POST("/compare", s.handleCompare)
	api.POST("/compare/corpus", s.handleCorpusCompare)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("dcomatch api server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("dcomatch api server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "dcomatch",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleStats(c echo.Context) error {
	stats, err := db.QueryCorpusStats(c.Request().Context(), s.pool)
	if err != nil {
		s.logger.Error().Err(err).Msg("query stats failed")
		return internalError(c, "Failed to load stats")
	}
	return success(c, stats)
}

// handleOrders lists every order holding articles, grouped by year with
// the newest year first.
func (s *Server) handleOrders(c echo.Context) error {
	const query = `
SELECT o.order_id, o.order_name, o.order_year
FROM orders o
JOIN articles a ON a.order_id = o.order_id
GROUP BY o.order_id, o.order_name, o.order_year
ORDER BY o.order_year DESC, o.order_id DESC
`
	rows, err := s.pool.Query(c.Request().Context(), query)
	if err != nil {
		s.logger.Error().Err(err).Msg("query orders failed")
		return internalError(c, "Failed to load orders")
	}
	defer rows.Close()

	var groups []orderYearGroup
	for rows.Next() {
		var (
			item orderItem
			year int
		)
		if err := rows.Scan(&item.OrderID, &item.OrderName, &year); err != nil {
			s.logger.Error().Err(err).Msg("scan order row failed")
			return internalError(c, "Failed to load orders")
		}
		if len(groups) == 0 || groups[len(groups)-1].Year != year {
			groups = append(groups, orderYearGroup{Year: year})
		}
		groups[len(groups)-1].Orders = append(groups[len(groups)-1].Orders, item)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error().Err(err).Msg("iterate order rows failed")
		return internalError(c, "Failed to load orders")
	}

	return success(c, map[string]any{"items": groups})
}

func (s *Server) handleOrderArticles(c echo.Context) error {
	orderID, err := strconv.ParseInt(strings.TrimSpace(c.Param("order_id")), 10, 64)
	if err != nil || orderID <= 0 {
		return failValidation(c, map[string]string{"order_id": "must be a positive integer"})
	}

	const query = `
SELECT article_id, article_number, article_title, category, word_count, language, novel
FROM articles
WHERE order_id = $1
ORDER BY article_id
`
	rows, err := s.pool.Query(c.Request().Context(), query, orderID)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("query order articles failed")
		return internalError(c, "Failed to load articles")
	}
	defer rows.Close()

	items := make([]articleItem, 0, 32)
	for rows.Next() {
		var item articleItem
		if err := rows.Scan(
			&item.ArticleID,
			&item.ArticleNumber,
			&item.ArticleTitle,
			&item.Category,
			&item.WordCount,
			&item.Language,
			&item.Novel,
		); err != nil {
			s.logger.Error().Err(err).Msg("scan article row failed")
			return internalError(c, "Failed to load articles")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error().Err(err).Msg("iterate article rows failed")
		return internalError(c, "Failed to load articles")
	}

	if len(items) == 0 {
		var exists bool
		checkErr := s.pool.QueryRow(c.Request().Context(),
			`SELECT EXISTS (SELECT 1 FROM orders WHERE order_id = $1)`, orderID).Scan(&exists)
		if checkErr == nil && !exists {
			return failNotFound(c, "Order not found")
		}
	}

	return success(c, map[string]any{"items": items})
}

func (s *Server) handleArticleSimilarities(c echo.Context) error {
	articleID, err := strconv.ParseInt(strings.TrimSpace(c.Param("article_id")), 10, 64)
	if err != nil || articleID <= 0 {
		return failValidation(c, map[string]string{"article_id": "must be a positive integer"})
	}

	items, err := db.ListSimilarities(c.Request().Context(), s.pool, articleID)
	if err != nil {
		s.logger.Error().Err(err).Int64("article_id", articleID).Msg("query similarities failed")
		return internalError(c, "Failed to load similarities")
	}

	return success(c, map[string]any{"items": items})
}

func (s *Server) handleNovel(c echo.Context) error {
	limit := defaultNovelLimit
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxNovelLimit {
			return failValidation(c, map[string]string{
				"limit": fmt.Sprintf("must be an integer in [1,%d]", maxNovelLimit),
			})
		}
		limit = parsed
	}

	items, err := db.ListNovelArticles(c.Request().Context(), s.pool, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("query novel articles failed")
		return internalError(c, "Failed to load novel articles")
	}

	return success(c, map[string]any{"items": items, "limit": limit})
}
