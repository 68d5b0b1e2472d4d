package main

import (
	"errors"
	"fmt"
	"sync"

	"go-pos-ws/internal/session"
	"go-pos-ws/internal/store"
	"go-pos-ws/internal/ws"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// posctl watch
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the session and live stock changes until interrupted",
	Long:  "watch keeps the session open, signs out when the membership is deactivated and prints stock updates as they happen.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := newClient()

		signedOut := make(chan struct{})
		var once sync.Once
		mgr := session.New(client, session.WithOnChange(func(s session.Snapshot) {
			switch s.State {
			case session.StateReady:
				fmt.Printf("[session] %s as %s\n", s.User.Email, s.RoleLabel)
			case session.StateAuthenticated:
				fmt.Println("[session] signed in without an active workspace")
			case session.StateUnauthenticated:
				fmt.Println("[session] signed out")
				once.Do(func() { close(signedOut) })
			}
		}))
		if err := mgr.Start(ctx); err != nil {
			return err
		}
		defer mgr.Stop()
		if mgr.State() == session.StateUnauthenticated {
			clearToken()
			return errors.New("not signed in, run: posctl login")
		}

		inv := store.NewInventory(client, nil)
		if err := inv.Fetch(ctx); err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			events, err := client.Events(gctx)
			if err != nil {
				return err
			}
			for e := range events {
				if e.Type != ws.EventStockUpdate || e.Product == nil {
					continue
				}
				inv.ApplyEvent(e)
				line := fmt.Sprintf("[stock] %s: %d → %d", e.Product.Name, e.Product.OldStock, e.Product.NewStock)
				if p, ok := inv.Get(e.Product.ID); ok && p.Stock <= p.MinStock {
					line += " (low)"
				}
				fmt.Println(line)
			}
			if gctx.Err() != nil {
				return nil
			}
			return errors.New("realtime connection closed")
		})
		g.Go(func() error {
			select {
			case <-signedOut:
				clearToken()
				return errors.New("session ended")
			case <-gctx.Done():
				return nil
			}
		})

		err := g.Wait()
		if ctx.Err() != nil {
			log.Debug().Msg("watch interrupted")
			return nil
		}
		return err
	},
}
