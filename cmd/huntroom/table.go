package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/caravela-games/huntroom/internal/config"
	"github.com/caravela-games/huntroom/internal/dice"
	"github.com/caravela-games/huntroom/internal/room"
	"github.com/caravela-games/huntroom/internal/roomcode"
	"github.com/caravela-games/huntroom/internal/session"
	"github.com/caravela-games/huntroom/internal/sheet"
	"github.com/caravela-games/huntroom/internal/wschannel"
)

const (
	sessionKeyRoom = "last_room"
	sessionKeyName = "last_name"
)

// table is one interactive seat at a room: the synchronizer plus the
// terminal render/input loops around it.
type table struct {
	sync  *room.Synchronizer
	log   *zerolog.Logger
	sheet *sheet.CharacterSheet
	// printed tracks how much of the message log has been rendered.
	printed int
}

func runTable(ctx context.Context, cfg config.Config, logger *zerolog.Logger, j *joinOptions) error {
	cache, err := session.Open(cfg.SessionPath)
	if err != nil {
		logger.Warn().Err(err).Msg("session cache unavailable")
		cache = nil
	} else {
		defer cache.Close()
	}

	fillFromSession(ctx, cache, j)

	switch {
	case j.room == "":
		return errors.New("room code required (--room)")
	case j.name == "":
		return errors.New("player name required (--name)")
	case j.password == "":
		return errors.New("room password required (--password)")
	}
	j.room = roomcode.Normalize(j.room)

	if cache != nil {
		if err := cache.Set(ctx, sessionKeyRoom, j.room); err != nil {
			logger.Warn().Err(err).Msg("failed to remember room")
		}
		if err := cache.Set(ctx, sessionKeyName, j.name); err != nil {
			logger.Warn().Err(err).Msg("failed to remember name")
		}
	}

	relayURL := cfg.RelayURL
	if j.relayURL != "" {
		relayURL = j.relayURL
	}

	channelName := roomcode.ChannelName(j.room, j.password)
	ch := wschannel.New(relayURL, channelName, j.room+":"+j.name+":"+strconv.FormatInt(time.Now().UnixNano(), 10), logger)

	t := &table{
		sync: room.New(ch, j.room, j.name, j.master, logger),
		log:  logger,
	}

	joinCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := t.sync.Join(joinCtx); err != nil {
		return fmt.Errorf("join room %s: %w", j.room, err)
	}
	defer t.sync.Leave()

	fmt.Printf("Conectado à sala %s como %s\n", j.room, j.name)

	if j.sheetPath != "" {
		if err := t.uploadSheet(j.sheetPath); err != nil {
			fmt.Printf("! %v\n", err)
		}
	}

	renderCtx, stopRender := context.WithCancel(ctx)
	defer stopRender()
	go t.renderLoop(renderCtx)

	return t.inputLoop(ctx)
}

func fillFromSession(ctx context.Context, cache *session.Cache, j *joinOptions) {
	if cache == nil {
		return
	}
	if j.room == "" {
		if v, ok, err := cache.Get(ctx, sessionKeyRoom); err == nil && ok {
			j.room = v
		}
	}
	if j.name == "" {
		if v, ok, err := cache.Get(ctx, sessionKeyName); err == nil && ok {
			j.name = v
		}
	}
}

// renderLoop polls the synchronizer snapshot and prints whatever arrived
// since the last pass.
func (t *table) renderLoop(ctx context.Context) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := t.sync.Snapshot()
			for _, msg := range snap.Messages[t.printed:] {
				fmt.Println(formatMessage(msg))
			}
			t.printed = len(snap.Messages)
		}
	}
}

func formatMessage(msg room.ChatMessage) string {
	stamp := msg.Timestamp.Local().Format("15:04")
	switch msg.Type {
	case room.MessageTypeSystem:
		return fmt.Sprintf("[%s] * %s", stamp, msg.Content)
	case room.MessageTypeRoll:
		detail := ""
		if r := msg.RollResult; r != nil {
			detail = fmt.Sprintf(" %v", r.Dice)
			if r.BonusDie != nil {
				detail += fmt.Sprintf(" +d6:%d", *r.BonusDie)
			}
			if r.Modifier != 0 {
				detail += fmt.Sprintf(" %+d", r.Modifier)
			}
			detail += fmt.Sprintf(" = %d", r.Total)
		}
		return fmt.Sprintf("[%s] 🎲 %s: %s%s", stamp, msg.PlayerName, msg.Content, detail)
	default:
		return fmt.Sprintf("[%s] %s: %s", stamp, msg.PlayerName, msg.Content)
	}
}

func (t *table) inputLoop(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "/") {
			t.sync.SendMessage(line)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "/quit":
			return nil
		case "/roll":
			t.handleRoll(fields[1:])
		case "/scene":
			t.handleScene(strings.TrimSpace(strings.TrimPrefix(line, "/scene")))
		case "/unpin":
			t.sync.UpdateScene(nil)
		case "/sheet":
			if len(fields) < 2 {
				fmt.Println("! uso: /sheet <arquivo.json>")
				continue
			}
			if err := t.uploadSheet(fields[1]); err != nil {
				fmt.Printf("! %v\n", err)
			}
		case "/destiny":
			t.handleDestiny(fields[1:])
		case "/players":
			t.printPlayers()
		default:
			fmt.Printf("! comando desconhecido: %s\n", fields[0])
		}
	}
	return scanner.Err()
}

// handleRoll parses "<spec> [±mod] [description...]" where spec is 4df,
// vant or NdS.
func (t *table) handleRoll(args []string) {
	if len(args) == 0 {
		fmt.Println("! uso: /roll 4df|vant|NdS [±mod] [descrição]")
		return
	}

	spec := strings.ToLower(args[0])
	rest := args[1:]

	modifier := 0
	if len(rest) > 0 {
		if m, err := strconv.Atoi(rest[0]); err == nil {
			modifier = m
			rest = rest[1:]
		}
	}
	description := strings.Join(rest, " ")

	var result dice.Result
	switch spec {
	case "4df", "df", "fate":
		result = dice.Fate(modifier, description)
	case "vant", "vantagem", "adv":
		result = dice.Advantage(modifier, description)
	default:
		count, sides, ok := parseDiceSpec(spec)
		if !ok {
			fmt.Printf("! rolagem inválida: %s\n", spec)
			return
		}
		r, err := dice.Roll(sides, count, modifier, description)
		if err != nil {
			fmt.Printf("! %v\n", err)
			return
		}
		result = r
	}

	t.sync.SendRoll(result, description, false)
}

func parseDiceSpec(spec string) (count, sides int, ok bool) {
	before, after, found := strings.Cut(spec, "d")
	if !found {
		return 0, 0, false
	}
	count = 1
	if before != "" {
		n, err := strconv.Atoi(before)
		if err != nil {
			return 0, 0, false
		}
		count = n
	}
	sides, err := strconv.Atoi(after)
	if err != nil {
		return 0, 0, false
	}
	return count, sides, true
}

// handleScene parses "<title> -- <description>"; the description is
// optional.
func (t *table) handleScene(args string) {
	if args == "" {
		fmt.Println("! uso: /scene <título> [-- descrição]")
		return
	}

	title, description, _ := strings.Cut(args, "--")
	t.sync.UpdateScene(&room.SceneInfo{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Aspects:     []string{},
		PinnedBy:    t.sync.PlayerID(),
		Timestamp:   time.Now().UTC(),
	})
}

func (t *table) handleDestiny(args []string) {
	if t.sheet == nil {
		fmt.Println("! nenhuma ficha carregada")
		return
	}
	delta := 1
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("! ajuste inválido: %s\n", args[0])
			return
		}
		delta = d
	}

	t.sheet.AdjustDestiny(delta)
	t.sync.UpdateSheet(*t.sheet)
	fmt.Printf("Pontos de destino: %d/%d\n", t.sheet.DestinyPoints, t.sheet.DestinyPointsMax)
}

func (t *table) uploadSheet(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ler ficha: %w", err)
	}
	s, err := sheet.Normalize(raw)
	if err != nil {
		return fmt.Errorf("ficha inválida: %w", err)
	}

	t.sheet = &s
	t.sync.UpdateSheet(s)
	fmt.Printf("Ficha carregada: %s\n", s.Name)
	return nil
}

func (t *table) printPlayers() {
	snap := t.sync.Snapshot()
	if len(snap.Players) == 0 {
		fmt.Println("(sala vazia)")
		return
	}
	for _, p := range snap.Players {
		role := ""
		if p.IsMaster {
			role = " [mestre]"
		}
		sheetInfo := "sem ficha"
		if p.Sheet != nil {
			sheetInfo = p.Sheet.Name
		}
		fmt.Printf("- %s%s (%s)\n", p.Name, role, sheetInfo)
	}
}
