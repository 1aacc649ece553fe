// Package tui provides a terminal interface for playing blackjack
// against a local engine, built on bubbletea.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// Model is the bubbletea model for a single-seat table. It owns a
// local engine and drives it from typed commands.
type Model struct {
	engine   *game.Engine
	advisor  *strategy.Advisor
	counter  *strategy.Counter
	playerID string
	logger   *log.Logger

	input       textinput.Model
	logViewport viewport.Model
	gameLog     []string

	width       int
	height      int
	focusedPane int // 0 = log, 1 = input
	initialized bool
	quitting    bool

	// Test mode captures log entries instead of updating the viewport
	testMode    bool
	capturedLog []string
}

// NewModel creates a TUI model seated at the given engine. The player
// must already be seated before the model is created.
func NewModel(engine *game.Engine, playerID string, logger *log.Logger) *Model {
	return NewModelWithOptions(engine, playerID, logger, false)
}

// NewModelWithOptions creates a TUI model with test mode control.
func NewModelWithOptions(engine *game.Engine, playerID string, logger *log.Logger, testMode bool) *Model {
	ti := textinput.New()
	ti.Placeholder = "bet <amount> to start a round"
	ti.Focus()
	ti.CharLimit = 120
	ti.Width = 60
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))

	vp := viewport.New(80, 20)

	counter := strategy.NewCounter(engine.Rules().NumDecks)
	engine.EventBus().Subscribe(counter)

	m := &Model{
		engine:      engine,
		advisor:     strategy.NewAdvisor(engine.Rules(), strategy.DefaultDeviations()),
		counter:     counter,
		playerID:    playerID,
		logger:      logger,
		input:       ti,
		logViewport: vp,
		focusedPane: 1,
		testMode:    testMode,
	}

	m.AddLogEntry(HeaderStyle.Render(" Blackjack "))
	m.AddLogEntry(InfoStyle.Render("Commands: bet, deal, hit, stand, double, split, surrender, insurance yes|no, advice, count, next, quit"))
	return m
}

// IsTestMode reports whether the model captures log entries for tests.
func (m *Model) IsTestMode() bool {
	return m.testMode
}

// GetCapturedLog returns log entries captured in test mode, nil otherwise.
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	return m.capturedLog
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.focusedPane = (m.focusedPane + 1) % 2
			if m.focusedPane == 1 {
				m.input.Focus()
			} else {
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				command := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				if quit := m.processCommand(command); quit {
					m.quitting = true
					return m, tea.Quit
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)

	actionWidth := max(m.width-2, 1)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(actionWidth)
	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	sidebarHeight := max(m.height-actionHeight-6, 1)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(sidebarHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-6, 1)
	logHeight := max(m.height-actionHeight-6, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && logHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows table and count state.
func (m *Model) renderSidebarPane() string {
	snap := m.engine.Snapshot()
	pv := snap.Player(m.playerID)

	var content strings.Builder
	if pv != nil {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: %s", formatMoney(pv.Balance))))
		content.WriteString("\n")
		if pv.Bet.Main > 0 {
			content.WriteString(fmt.Sprintf("Bet: %s", formatMoney(pv.Bet.Main)))
			for kind, stake := range pv.Bet.SideBets {
				content.WriteString(fmt.Sprintf("\n  %s: %s", kind, formatMoney(stake)))
			}
			content.WriteString("\n")
		}
	}
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Phase: %s", snap.Phase)))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Shoe: %d cards", snap.CardsRemaining)))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Running count: %+d", m.counter.RunningCount())))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("True count: %+.1f", m.counter.TrueCount())))
	return content.String()
}

// renderActionPane renders the hand summary and input line.
func (m *Model) renderActionPane() string {
	snap := m.engine.Snapshot()
	pv := snap.Player(m.playerID)

	var content strings.Builder
	if pv != nil && len(pv.Hands) > 0 {
		content.WriteString(HandInfoStyle.Render(fmt.Sprintf("Dealer: %s", m.formatDealer(snap.Dealer))))
		content.WriteString("\n")
		for i, hv := range pv.Hands {
			marker := " "
			if snap.Phase == game.PlayerTurn && i == pv.ActiveHand && len(hv.Actions) > 0 {
				marker = ">"
			}
			content.WriteString(HandInfoStyle.Render(fmt.Sprintf("%s Hand %d: %s %s", marker, i+1, m.formatCards(hv.Cards), handStatus(hv))))
			content.WriteString("\n")
			if len(hv.Actions) > 0 {
				content.WriteString(ActionsStyle.Render("Actions: " + formatActions(hv.Actions)))
				content.WriteString("\n")
			}
		}
	}

	switch snap.Phase {
	case game.Betting:
		m.input.Placeholder = "bet <amount> [perfect_pairs <amount>] [21+3 <amount>], then deal"
	case game.InsuranceDecision:
		m.input.Placeholder = "insurance yes|no"
	case game.PlayerTurn:
		m.input.Placeholder = "hit, stand, double, split, surrender, advice"
	case game.Settlement:
		m.input.Placeholder = "next to start a new round, quit to exit"
	default:
		m.input.Placeholder = ""
	}

	content.WriteString(m.input.View())
	content.WriteString("\n")
	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return content.String()
}

// processCommand applies one typed command. Returns true when the
// session should end.
func (m *Model) processCommand(raw string) bool {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 {
		if m.engine.Snapshot().Phase == game.Settlement {
			m.nextRound()
		}
		return false
	}

	switch fields[0] {
	case "quit", "exit":
		return true
	case "bet":
		m.placeBet(fields[1:])
	case "deal":
		snap, err := m.engine.Deal()
		if err != nil {
			m.logError(err)
			return false
		}
		m.logDeal(snap)
	case "hit", "stand", "double", "split", "surrender":
		m.act(fields[0])
	case "insurance":
		m.insurance(fields[1:])
	case "advice":
		m.advise()
	case "count":
		m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("Running %+d, true %+.1f, %.1f decks left",
			m.counter.RunningCount(), m.counter.TrueCount(), m.counter.DecksRemaining())))
	case "next":
		m.nextRound()
	default:
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Unknown command %q", fields[0])))
	}
	return false
}

func (m *Model) placeBet(args []string) {
	if len(args) == 0 {
		m.AddLogEntry(ErrorStyle.Render("Usage: bet <amount> [perfect_pairs <amount>] [21+3 <amount>]"))
		return
	}
	main, err := parseMoney(args[0])
	if err != nil {
		m.logError(err)
		return
	}
	bet := game.Bet{Main: main}
	for i := 1; i+1 < len(args); i += 2 {
		kind, ok := game.ParseSideBetKind(args[i])
		if !ok {
			m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Unknown side bet %q", args[i])))
			return
		}
		stake, err := parseMoney(args[i+1])
		if err != nil {
			m.logError(err)
			return
		}
		if bet.SideBets == nil {
			bet.SideBets = make(map[game.SideBetKind]int64)
		}
		bet.SideBets[kind] = stake
	}

	if _, err := m.engine.PlaceBet(m.playerID, bet); err != nil {
		m.logError(err)
		return
	}
	m.AddLogEntry(fmt.Sprintf("Bet placed: %s. Type deal to start.", formatMoney(bet.Total())))
}

func (m *Model) act(name string) {
	action, ok := game.ParseAction(name)
	if !ok {
		m.AddLogEntry(ErrorStyle.Render(fmt.Sprintf("Unknown action %q", name)))
		return
	}
	snap, err := m.engine.Action(m.playerID, action)
	if err != nil {
		m.logError(err)
		return
	}
	m.AddLogEntry(fmt.Sprintf("You %s.", action))
	m.logProgress(snap)
}

func (m *Model) insurance(args []string) {
	if len(args) == 0 {
		m.AddLogEntry(ErrorStyle.Render("Usage: insurance yes|no"))
		return
	}
	var snap game.Snapshot
	var err error
	switch args[0] {
	case "yes", "y":
		snap, err = m.engine.TakeInsurance(m.playerID)
	case "no", "n":
		snap, err = m.engine.DeclineInsurance(m.playerID)
	default:
		m.AddLogEntry(ErrorStyle.Render("Usage: insurance yes|no"))
		return
	}
	if err != nil {
		m.logError(err)
		return
	}
	m.logProgress(snap)
}

func (m *Model) advise() {
	snap := m.engine.Snapshot()
	if snap.Phase == game.InsuranceDecision {
		if m.advisor.InsuranceAdvised(m.counter.TrueCount()) {
			m.AddLogEntry(WarningStyle.Render("Advice: take insurance, the count favors it"))
		} else {
			m.AddLogEntry(InfoStyle.Render("Advice: decline insurance"))
		}
		return
	}
	pv := snap.Player(m.playerID)
	if pv == nil || snap.Phase != game.PlayerTurn {
		m.AddLogEntry(ErrorStyle.Render("No hand in play to advise on"))
		return
	}
	hv := pv.Hands[pv.ActiveHand]
	advice, ok := m.advisor.Recommend(hv.Cards, snap.Dealer.Upcard(), hv.Actions, m.counter.TrueCount())
	if !ok {
		m.AddLogEntry(ErrorStyle.Render("No advice available for this hand"))
		return
	}
	style := InfoStyle
	if advice.Deviation {
		style = WarningStyle
	}
	m.AddLogEntry(style.Render(fmt.Sprintf("Advice: %s (%s)", advice.Action, advice.Rationale)))
}

func (m *Model) nextRound() {
	if _, err := m.engine.NextRound(); err != nil {
		m.logError(err)
		return
	}
	m.AddLogEntry(InfoStyle.Render("New round. Place your bet."))
}

func (m *Model) logDeal(snap game.Snapshot) {
	pv := snap.Player(m.playerID)
	if pv == nil || len(pv.Hands) == 0 {
		return
	}
	m.AddLogEntry(fmt.Sprintf("Dealt %s against dealer %s", m.formatCards(pv.Hands[0].Cards), m.formatDealer(snap.Dealer)))
	m.logProgress(snap)
}

// logProgress narrates phase-driven outcomes after an engine op.
func (m *Model) logProgress(snap game.Snapshot) {
	switch snap.Phase {
	case game.InsuranceDecision:
		m.AddLogEntry(WarningStyle.Render("Dealer shows an ace. Insurance? (insurance yes|no)"))
	case game.Settlement:
		m.logSettlement()
	}
}

func (m *Model) logSettlement() {
	report, err := m.engine.Result()
	if err != nil {
		m.logError(err)
		return
	}
	m.AddLogEntry(fmt.Sprintf("Dealer: %s (%d)", m.formatCards(report.DealerCards), report.DealerTotal))
	for _, ps := range report.Players {
		if ps.PlayerID != m.playerID {
			continue
		}
		for _, hs := range ps.Hands {
			style := SuccessStyle
			if hs.Profit < 0 {
				style = ErrorStyle
			} else if hs.Profit == 0 {
				style = InfoStyle
			}
			m.AddLogEntry(style.Render(fmt.Sprintf("Hand %d: %s for %s", hs.HandIndex+1, hs.Outcome, formatMoney(hs.Profit))))
		}
		if ps.Insurance != nil {
			if ps.Insurance.Won {
				m.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("Insurance pays %s", formatMoney(ps.Insurance.Payout))))
			} else {
				m.AddLogEntry(ErrorStyle.Render("Insurance loses"))
			}
		}
		for _, sb := range ps.SideBets {
			if sb.Won() {
				m.AddLogEntry(SuccessStyle.Render(fmt.Sprintf("%s: %s pays %s", sb.Kind, sb.Label, formatMoney(sb.Payout))))
			} else {
				m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("%s: no match", sb.Kind)))
			}
		}
		m.AddLogEntry(HandInfoStyle.Render(fmt.Sprintf("Round net: %s", formatMoney(ps.Net))))
	}
	m.AddLogEntry(InfoStyle.Render("Type next for another round."))
}

func (m *Model) logError(err error) {
	m.logger.Debug("command failed", "error", err)
	m.AddLogEntry(ErrorStyle.Render(err.Error()))
}

// AddLogEntry appends an entry to the game log.
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) formatDealer(d game.DealerView) string {
	if len(d.Cards) == 0 {
		return ""
	}
	cards := m.formatCards(d.Cards)
	if !d.HoleRevealed {
		return fmt.Sprintf("[%s ??] showing %d", m.formatCard(d.Cards[0]), d.Total)
	}
	return fmt.Sprintf("%s (%d)", cards, d.Total)
}

func (m *Model) formatCards(cards []deck.Card) string {
	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		formatted = append(formatted, m.formatCard(card))
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func (m *Model) formatCard(card deck.Card) string {
	if card.IsRed() {
		return RedCardStyle.Render(card.String())
	}
	return BlackCardStyle.Render(card.String())
}

func handStatus(hv game.HandView) string {
	switch {
	case hv.Blackjack:
		return "blackjack!"
	case hv.Bust:
		return fmt.Sprintf("bust (%d)", hv.Total)
	case hv.Surrendered:
		return "surrendered"
	case hv.Soft:
		return fmt.Sprintf("soft %d", hv.Total)
	default:
		return fmt.Sprintf("%d", hv.Total)
	}
}

func formatActions(actions []game.Action) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, "["+a.String()+"]")
	}
	return strings.Join(parts, " ")
}

// formatMoney renders minor units as dollars.
func formatMoney(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s$%d.%02d", sign, amount/100, amount%100)
}

// parseMoney parses a dollar amount into minor units. Accepts whole
// dollars only, which matches table stakes.
func parseMoney(s string) (int64, error) {
	dollars, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return dollars * 100, nil
}
