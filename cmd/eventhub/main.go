// Command eventhub runs the events platform: an HTTP API server and a
// cron-style notification job, as subcommands of one binary.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"eventhub/internal/cache"
	"eventhub/internal/database"
	"eventhub/internal/handler"
	"eventhub/internal/notify"
	"eventhub/internal/repository"
	"eventhub/internal/service"
	"eventhub/internal/telegram"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// Load .env first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "eventhub",
		Usage: "Events platform backend with Telegram reminders.",
		Commands: []*cli.Command{
			serveCommand(),
			notifyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

// stores bundles the persistence implementations behind the service
// interfaces so serve can swap Postgres for memory in dev mode.
type stores struct {
	events         service.EventStore
	participations service.ParticipationStore
	users          service.UserStore
	comments       service.CommentStore
	close          func()
}

func openStores(ctx context.Context, dev bool, log *slog.Logger) (*stores, error) {
	if dev {
		events := repository.NewMemoryEventRepo()
		participations := repository.NewMemoryParticipationRepo()
		comments := repository.NewMemoryCommentRepo()
		events.AttachParticipations(participations)
		events.AttachComments(comments)
		log.Warn("running with in-memory stores, data will not survive a restart")
		return &stores{
			events:         events,
			participations: participations,
			users:          repository.NewMemoryUserRepo(),
			comments:       comments,
			close:          func() {},
		}, nil
	}

	pool, err := database.NewPool(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.Info("connected to postgres")
	return &stores{
		events:         repository.NewEventRepository(pool),
		participations: repository.NewParticipationRepository(pool),
		users:          repository.NewUserRepository(pool),
		comments:       repository.NewCommentRepository(pool),
		close:          pool.Close,
	}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dev", Usage: "Use in-memory stores instead of Postgres."},
		},
		Action: func(c *cli.Context) error {
			log := newLogger()
			ctx := c.Context

			st, err := openStores(ctx, c.Bool("dev"), log)
			if err != nil {
				return err
			}
			defer st.close()

			eventSvc := service.NewEventService(st.events)
			participationSvc := service.NewParticipationService(st.events, st.participations)
			commentSvc := service.NewCommentService(st.events, st.comments)
			userSvc := service.NewUserService(st.users)

			eventHandler := handler.NewEventHandler(eventSvc)
			participantHandler := handler.NewParticipantHandler(participationSvc)
			commentHandler := handler.NewCommentHandler(commentSvc)
			userHandler := handler.NewUserHandler(userSvc)

			// Telegram is optional for serving the API: without a token
			// the linking endpoints are simply not mounted.
			var telegramHandler *handler.TelegramHandler
			if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
				bot, err := telegram.NewBot(token)
				if err != nil {
					return err
				}
				codes := cache.NewMemory(5 * time.Minute)
				defer codes.Close()
				links := telegram.NewLinkService(codes, st.users, bot)
				webhook := telegram.NewWebhook(links, bot, log)
				telegramHandler = handler.NewTelegramHandler(links, webhook, bot.Username(), log)
				log.Info("telegram bot connected", "username", bot.Username())
			} else {
				log.Warn("TELEGRAM_BOT_TOKEN not set, telegram endpoints disabled")
			}

			r := newRouter(userSvc, eventHandler, participantHandler, commentHandler, userHandler, telegramHandler)

			port := getEnv("PORT", "8080")
			srv := &http.Server{
				Addr:         ":" + port,
				Handler:      r,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				log.Info("server listening", "port", port)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("server error", "error", err)
					os.Exit(1)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			log.Info("server stopped")
			return nil
		},
	}
}

func notifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Send Telegram reminders for events starting soon. Intended to run from cron.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "hours",
				Value: envInt("NOTIFY_LOOKAHEAD_HOURS", 1),
				Usage: "Hours before event start to send the reminder.",
			},
		},
		Action: func(c *cli.Context) error {
			log := newLogger()
			ctx := c.Context

			st, err := openStores(ctx, false, log)
			if err != nil {
				return err
			}
			defer st.close()

			bot, err := telegram.NewBot(os.Getenv("TELEGRAM_BOT_TOKEN"))
			if err != nil {
				return err
			}

			scheduler := notify.NewScheduler(st.events, st.participations, st.users, bot, log)
			lookahead := time.Duration(c.Int("hours")) * time.Hour

			report, err := scheduler.Run(ctx, time.Now().UTC(), lookahead)
			if err != nil {
				return fmt.Errorf("notification run: %w", err)
			}
			fmt.Printf("events=%d sent=%d failed=%d\n",
				report.EventsProcessed, report.Sent, report.Failed)
			return nil
		},
	}
}

func newRouter(
	userSvc *service.UserService,
	events *handler.EventHandler,
	participants *handler.ParticipantHandler,
	comments *handler.CommentHandler,
	users *handler.UserHandler,
	tg *handler.TelegramHandler,
) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(handler.Auth(userSvc))

	r.Get("/health", handler.HealthCheck)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", events.List)
		r.Get("/public", events.ListPublic)

		r.Group(func(r chi.Router) {
			r.Use(handler.RequireAuth)
			r.Post("/", events.Create)
			r.Get("/user/me", events.ListMine)
			r.Get("/user/created", events.ListCreated)
			r.Get("/user/participating", events.ListParticipating)
		})

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", events.Get)
			r.Get("/comments", comments.List)

			r.Group(func(r chi.Router) {
				r.Use(handler.RequireAuth)
				r.Put("/", events.Update)
				r.Delete("/", events.Delete)
				r.Get("/participants", participants.List)
				r.Post("/join", participants.Join)
				r.Delete("/leave", participants.Leave)
				r.Put("/status", participants.UpdateStatus)
				r.Post("/comments", comments.Create)
				r.Put("/comments/{commentID}", comments.Update)
				r.Delete("/comments/{commentID}", comments.Delete)
			})
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", users.Create)
		r.Get("/", users.List)
		r.Get("/{id}", users.Get)
	})

	r.With(handler.RequireAuth).Get("/auth/me", users.Me)

	if tg != nil {
		r.Route("/telegram", func(r chi.Router) {
			// The webhook is called by Telegram itself, unauthenticated.
			r.Post("/webhook", tg.Webhook)

			r.Group(func(r chi.Router) {
				r.Use(handler.RequireAuth)
				r.Get("/status", tg.Status)
				r.Post("/generate-code", tg.GenerateCode)
				r.Delete("/unlink", tg.Unlink)
				r.Post("/test", tg.SendTest)
			})
		})
	}

	return r
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
