// Package app assembles the shop bot: storage, seeders, flows, handlers
// and the command/callback registry.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/shopbot/core/bootstrap"
	coretelegram "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/commands"
	"github.com/m3rciful/shopbot/core/telegram/router"
	"github.com/m3rciful/shopbot/core/telegram/state"
	"github.com/m3rciful/shopbot/shop/admin"
	"github.com/m3rciful/shopbot/shop/cart"
	"github.com/m3rciful/shopbot/shop/handlers"
	"github.com/m3rciful/shopbot/shop/menu"
	"github.com/m3rciful/shopbot/shop/storage"
)

// App is the assembled bot, ready to hand its run options to the runtime.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	sessions state.Manager
	registry *coretelegram.Registry
}

// Bootstrap initializes infrastructure and wires every handler.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	repo := storage.NewRepository(res.DB)

	modules := bootstrap.Modules{
		Seeders: []bootstrap.Seeder{
			bootstrap.SeederFunc(func(ctx context.Context, _ bootstrap.Storage) error {
				return repo.EnsureBanners(ctx)
			}),
		},
	}
	for _, s := range modules.Seeders {
		if err := s.Seed(context.Background(), repo); err != nil {
			_ = res.DB.Close()
			return nil, fmt.Errorf("app: seeding failed: %w", err)
		}
	}

	sessions := state.NewMemoryManager()
	resolver := menu.NewResolver(repo, cart.NewEngine(repo), cfg.Shop.BotNick, cfg.Telegram.AdminID)
	form := admin.NewProductForm(repo, sessions)
	banners := admin.NewBannerFlow(repo, sessions)

	users := handlers.NewUser(repo, resolver)
	admins := handlers.NewAdmin(repo, form, banners, sessions, cfg.Telegram.AdminID)
	admins.RegisterStates()

	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     users.Start,
		Description: "Open the shop",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     admins.Command,
		Description: "Admin menu",
		AdminOnly:   true,
		Hidden:      true,
	})

	if err := reg.RegisterCallback(menu.TokenPrefix, users.MenuCallback); err != nil {
		return nil, err
	}
	if err := reg.RegisterCallbackPrefix("category_", admins.AssortmentCategory); err != nil {
		return nil, err
	}
	if err := reg.RegisterCallbackPrefix("delete_", admins.DeleteProduct); err != nil {
		return nil, err
	}
	if err := reg.RegisterCallbackPrefix("change_", admins.ChangeProduct); err != nil {
		return nil, err
	}
	if err := reg.RegisterCallbackPrefix("prodcat_", admins.ChooseCategory); err != nil {
		return nil, err
	}

	unknownText := handlers.Fallbacks{}.UnknownText()
	reg.SetTextFallback(func(c tele.Context) error {
		handled, err := admins.MenuText(c)
		if handled || err != nil {
			return err
		}
		return unknownText(c)
	})

	return &App{
		cfg:      cfg,
		db:       res.DB,
		sessions: sessions,
		registry: reg,
	}, nil
}

// TelegramRunOptions exposes the bot composition to the shared runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()

	fallbacks := handlers.Fallbacks{}
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{
		NotFound: fallbacks.UnknownCallback(),
	}))
	// Text and photo updates can land inside an FSM conversation, so they
	// carry the sender's session in the handler context.
	withSession := state.WithSession(a.sessions)
	textRoutes := router.TextRoutes(a.sessions, a.registry, router.TextOptions{
		UnknownText:  fallbacks.UnknownText(),
		UnknownPhoto: fallbacks.UnknownPhoto(),
	})
	for i := range textRoutes {
		textRoutes[i].Handler = withSession(textRoutes[i].Handler)
	}
	routes = append(routes, textRoutes...)

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
