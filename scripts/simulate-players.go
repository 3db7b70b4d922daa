package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	grpcDelivery "github.com/vogiaan1904/draftqueue/internal/delivery/grpc"
	"github.com/vogiaan1904/draftqueue/internal/models"
	pkgGrpc "github.com/vogiaan1904/draftqueue/pkg/grpc"
)

var (
	httpAddr     = flag.String("http", "localhost:8080", "HTTP address of the draft queue service")
	grpcAddr     = flag.String("grpc", "localhost:50057", "gRPC address of the draft queue service")
	queueID      = flag.String("queue", "dmu", "Queue to register players in")
	numPlayers   = flag.Int("players", 16, "Number of simulated players")
	declineRate  = flag.Float64("decline-rate", 0.05, "Probability a player declines a ready check (0.0-1.0)")
	silentRate   = flag.Float64("silent-rate", 0.0, "Probability a player never answers a ready check (0.0-1.0)")
	joinInterval = flag.Duration("join-interval", 50*time.Millisecond, "Time between player connections")
	statusEvery  = flag.Duration("status-interval", 2*time.Second, "Interval between status reports")
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type stats struct {
	mu        sync.Mutex
	checks    int
	accepted  int
	declined  int
	cancelled int
	launched  int
}

func (s *stats) add(f func(s *stats)) {
	s.mu.Lock()
	f(s)
	s.mu.Unlock()
}

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, cleanup, err := pkgGrpc.NewClientConn(*grpcAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to gRPC: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	client := grpcDelivery.NewDraftQueueClient(conn)

	st := &stats{}
	var wg sync.WaitGroup
	for i := 0; i < *numPlayers; i++ {
		name := fmt.Sprintf("sim-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := runPlayer(ctx, st); err != nil {
				fmt.Printf("player %s: %v\n", name, err)
			}
		}()

		select {
		case <-ctx.Done():
		case <-time.After(*joinInterval):
		}
	}

	ticker := time.NewTicker(*statusEvery)
	defer ticker.Stop()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-ctx.Done():
			<-done
			printSummary(st)
			return
		case <-done:
			printSummary(st)
			return
		case <-ticker.C:
			out, err := client.GetQueueStatus(ctx, nil)
			if err != nil {
				fmt.Printf("status: %v\n", err)
				continue
			}
			data, _ := json.Marshal(out.AsMap())
			fmt.Printf("status: %s\n", data)
		}
	}
}

func runPlayer(ctx context.Context, st *stats) error {
	playerID, token, err := issueToken(ctx)
	if err != nil {
		return err
	}

	u := url.URL{Scheme: "ws", Host: *httpAddr, Path: "/ws", RawQuery: "token=" + url.QueryEscape(token)}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if err := conn.WriteJSON(map[string]any{
		"event": models.EventRegister,
		"data":  map[string]string{"queueId": *queueID},
	}); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		switch f.Event {
		case models.EventReadyCheck:
			st.add(func(s *stats) { s.checks++ })

			roll := rand.Float64()
			if roll < *silentRate {
				continue
			}

			state := models.ReadyStateReady
			if roll < *silentRate+*declineRate {
				state = models.ReadyStateNotReady
				st.add(func(s *stats) { s.declined++ })
			} else {
				st.add(func(s *stats) { s.accepted++ })
			}

			if err := conn.WriteJSON(map[string]any{
				"event": models.EventSetReadyState,
				"data":  map[string]string{"state": string(state)},
			}); err != nil {
				return fmt.Errorf("set ready state: %w", err)
			}

		case models.EventReadyCheckCancel:
			st.add(func(s *stats) { s.cancelled++ })

		case models.EventSetSession:
			var msg models.SetSessionMessage
			_ = json.Unmarshal(f.Data, &msg)
			st.add(func(s *stats) { s.launched++ })
			fmt.Printf("player %s joined session %s\n", playerID, msg.SessionID)
			return nil
		}
	}
}

func issueToken(ctx context.Context) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+*httpAddr+"/api/v1/auth/token", nil)
	if err != nil {
		return "", "", err
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("issue token: %w", err)
	}
	defer res.Body.Close()

	var out struct {
		Data struct {
			PlayerID string `json:"player_id"`
			Token    string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("decode token: %w", err)
	}
	if out.Data.Token == "" {
		return "", "", fmt.Errorf("issue token: empty token (status %d)", res.StatusCode)
	}
	return out.Data.PlayerID, out.Data.Token, nil
}
