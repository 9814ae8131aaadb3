package main

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"limit-holdem/internal/config"
	"limit-holdem/internal/game"
	"limit-holdem/internal/logging"
	"limit-holdem/internal/room"
	"limit-holdem/internal/ws"
)

type envelope struct {
	Type string `json:"type"`
}

type bot struct {
	cfg      config.BotConfig
	conn     *websocket.Conn
	playerID string
	hands    int
	// lastTurn stops the bot answering the same decision twice.
	lastTurn string
	started  bool
}

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.WSURL, nil)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.WSURL).Msg("dial failed")
	}
	defer conn.Close()

	b := &bot{cfg: cfg, conn: conn}
	if err := b.run(); err != nil {
		log.Fatal().Err(err).Msg("bot failed")
	}
}

// run joins the room and plays until the hand limit or the connection ends.
func (b *bot) run() error {
	if err := b.send(ws.JoinMessage{Type: ws.TypeJoin, Name: b.cfg.Name, RoomID: b.cfg.RoomID}); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Msg("connection closed")
			return nil
		}
		done, err := b.handle(data)
		if err != nil {
			log.Warn().Err(err).Msg("bad message")
			continue
		}
		if done {
			log.Info().Int("hands", b.hands).Msg("bot finished")
			return b.send(envelope{Type: ws.TypeLeave})
		}
	}
}

func (b *bot) handle(data []byte) (bool, error) {
	var base envelope
	if err := json.Unmarshal(data, &base); err != nil {
		return false, err
	}
	switch base.Type {
	case "welcome":
		var m room.WelcomeMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return false, err
		}
		b.playerID = m.PlayerID
		log.Info().Str("player_id", m.PlayerID).Str("room_id", m.RoomID).Msg("seated")
	case "error":
		var m room.ErrorMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return false, err
		}
		log.Warn().Str("code", m.Code).Str("message", m.Message).Msg("server_error")
	case "game_state":
		var m room.GameStateMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return false, err
		}
		return false, b.onState(m)
	case "hand_complete":
		var m room.HandCompleteMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return false, err
		}
		b.hands++
		log.Info().Int("hand_no", m.HandNumber).Str("winner", m.WinnerName).Str("category", m.HandCategory).Int64("pot", m.PotAmount).Msg("hand_complete")
		if b.cfg.Hands > 0 && b.hands >= b.cfg.Hands {
			return true, nil
		}
		if b.cfg.StartGame {
			return false, b.send(envelope{Type: ws.TypeNewHand})
		}
	}
	return false, nil
}

func (b *bot) onState(m room.GameStateMessage) error {
	st := m.State
	if st.Phase == string(game.PhaseLobby) {
		if b.cfg.StartGame && !b.started && len(st.Seats) >= 2 {
			b.started = true
			return b.send(envelope{Type: ws.TypeStartGame})
		}
		return nil
	}
	b.started = false
	if st.LegalActions == nil || st.ActivePlayerID != b.playerID {
		return nil
	}
	turn := fmt.Sprintf("%d/%s/%d/%d", st.HandNumber, st.Phase, st.RaisesThisStreet, st.CurrentBet)
	if turn == b.lastTurn {
		return nil
	}
	b.lastTurn = turn
	action := decide(*st.LegalActions)
	log.Debug().Int("hand_no", st.HandNumber).Str("phase", st.Phase).Str("action", action).Msg("acting")
	return b.send(ws.ActionMessage{Type: ws.TypeAction, Action: action})
}

// decide checks or calls whatever it can, pushes a short stack all-in rather
// than folding, and folds only when nothing else is allowed.
func decide(la game.LegalActions) string {
	switch {
	case la.CanCheck:
		return string(game.ActionCheck)
	case la.CanCall:
		return string(game.ActionCall)
	case la.CanAllIn:
		return string(game.ActionAllIn)
	default:
		return string(game.ActionFold)
	}
}

func (b *bot) send(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.conn.WriteMessage(websocket.TextMessage, payload)
}
