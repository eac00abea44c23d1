package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/chat"
)

const (
	PlaceHolderText   = "Say something..."
	NPCIDPlaceholder  = "Enter an NPC id (e.g. guard1)..."
	defaultBackground = "A local who has lived in these parts for many years."
	historyPageSize   = 10
)

type stage int

const (
	stageSelectNPC stage = iota
	stageCreateNPC
	stageChat
)

type lineKind int

const (
	linePlayer lineKind = iota
	lineNPC
	lineSystem
	lineError
)

type transcriptLine struct {
	kind lineKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *apiClient
	stage        stage
	npc          *actor.NPC
	pendingID    string
	selected     int
	reputation   *ReputationResponse
	transcript   []transcriptLine
	lastReply    string
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type npcLoadedMsg struct {
	npc *actor.NPC
	err error
}

type chatResponseMsg struct {
	response *chat.ChatResponse
	err      error
}

type reputationMsg struct {
	rep *ReputationResponse
	err error
}

type historyMsg struct {
	history []actor.ConversationEntry
	err     error
}

type questMsg struct {
	quest *actor.Quest
	err   error
}

type progressTickMsg struct{}

var titleCaser = cases.Title(language.English)

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = NPCIDPlaceholder
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		stage:        stageSelectNPC,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m *ConsoleUI) layout() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m *ConsoleUI) addLine(kind lineKind, text string) {
	m.transcript = append(m.transcript, transcriptLine{kind: kind, text: text})
}

// writeChatContent re-renders the transcript for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 10 {
		chatWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("NPC ENGINE") + "\n\n")
	if m.npc != nil {
		content.WriteString(fmt.Sprintf("You are talking to %s. Type /help for commands.\n\n", m.npc.Name))
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	for _, line := range m.transcript {
		content.WriteString(m.renderLine(line, chatWidth) + "\n\n")
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) renderLine(line transcriptLine, width int) string {
	switch line.kind {
	case linePlayer:
		return userStyle.Render("You: ") + wordwrap.String(line.text, width-5)
	case lineNPC:
		prefix := m.npc.Name + ": "
		return npcStyle.Render(prefix) + wordwrap.String(line.text, width-len(prefix))
	case lineError:
		return errorStyle.Render("Error: " + wordwrap.String(line.text, width-7))
	default:
		return systemStyle.Render(wordwrap.String(line.text, width))
	}
}

func writeMetadata(cfg *ConsoleConfig, npc *actor.NPC, rep *ReputationResponse) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("NPC") + "\n\n")

	content.WriteString("Name:\n" + npc.Name + "\n\n")
	content.WriteString("Personality:\n" + titleCaser.String(npc.Personality.String()) + "\n\n")
	content.WriteString("Location:\n" + npc.Location + "\n\n")

	content.WriteString(titleStyle.Render("YOU") + "\n\n")
	content.WriteString("Player:\n" + cfg.PlayerID + "\n\n")
	if rep != nil {
		content.WriteString(fmt.Sprintf("Reputation:\n%d (%s)\n\n", rep.Reputation, rep.Level))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /rep /history\n")
	content.WriteString("• /quest /copy\n")
	content.WriteString("• /help\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		if m.stage == stageChat {
			m.writeChatContent()
			m.metaViewport.SetContent(writeMetadata(m.config, m.npc, m.reputation))
		}

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.showQuitModal = true
			return m, nil
		}
		switch m.stage {
		case stageSelectNPC:
			return m.updateSelectNPC(msg)
		case stageCreateNPC:
			return m.updateCreateNPC(msg)
		}
		if msg.Type == tea.KeyEnter {
			return m.submitChat()
		}

	case npcLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, errNotFound) {
				m.err = nil
				m.stage = stageCreateNPC
				m.selected = 0
				return m, nil
			}
			m.err = msg.err
			return m, nil
		}
		return m.startChat(msg.npc)

	case chatResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.addLine(lineError, msg.err.Error())
		} else {
			m.lastReply = msg.response.NPCResponse
			m.addLine(lineNPC, msg.response.NPCResponse)
		}
		m.writeChatContent()
		return m, m.loadReputation()

	case reputationMsg:
		if msg.err != nil {
			m.addLine(lineError, msg.err.Error())
			m.writeChatContent()
		} else {
			m.reputation = msg.rep
			m.metaViewport.SetContent(writeMetadata(m.config, m.npc, m.reputation))
		}

	case historyMsg:
		m.loading = false
		if msg.err != nil {
			m.addLine(lineError, msg.err.Error())
		} else {
			m.addLine(lineSystem, formatHistory(msg.history))
		}
		m.writeChatContent()

	case questMsg:
		m.loading = false
		if msg.err != nil {
			m.addLine(lineError, msg.err.Error())
		} else {
			m.lastReply = formatQuest(msg.quest)
			m.addLine(lineSystem, m.lastReply)
		}
		m.writeChatContent()

	case progressTickMsg:
		if m.loading && m.stage == stageChat {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
		return m, nil
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) updateSelectNPC(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	}
	if m.loading {
		return m, nil
	}

	id := strings.TrimSpace(m.textarea.Value())
	if id == "" {
		return m, nil
	}
	m.pendingID = id
	m.loading = true
	m.err = nil
	m.textarea.Reset()
	return m, m.lookupNPC(id)
}

func (m ConsoleUI) updateCreateNPC(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(actor.Personalities)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		m.loading = true
		return m, m.createNPC(actor.NPCSpec{
			ID:          m.pendingID,
			Name:        titleCaser.String(strings.NewReplacer("_", " ", "-", " ").Replace(m.pendingID)),
			Personality: actor.Personalities[m.selected],
			Background:  defaultBackground,
		})
	}
	return m, nil
}

func (m ConsoleUI) startChat(npc *actor.NPC) (tea.Model, tea.Cmd) {
	m.npc = npc
	m.stage = stageChat
	m.textarea.Placeholder = PlaceHolderText
	m.textarea.Reset()
	m.textarea.Focus()
	if m.width > 0 && m.height > 0 {
		m.layout()
	}
	m.writeChatContent()
	m.metaViewport.SetContent(writeMetadata(m.config, m.npc, m.reputation))
	return m, tea.Batch(textarea.Blink, m.loadReputation())
}

func (m ConsoleUI) submitChat() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}
	m.textarea.Reset()

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	m.loading = true
	m.progressTick = 0
	m.addLine(linePlayer, input)
	m.writeChatContent()

	return m, tea.Batch(m.sendChatMessage(input), progressTick())
}

const helpText = `Commands:
• /rep - Show your reputation with this NPC
• /history - Show recent conversation history
• /quest [context] - Ask the NPC for a quest
• /copy - Copy the last reply to the clipboard
• /help - Show this help
• Ctrl+C - Quit`

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/help":
		m.addLine(lineSystem, helpText)

	case "/rep":
		if m.reputation != nil {
			m.addLine(lineSystem, fmt.Sprintf("Reputation with %s: %d (%s)", m.npc.Name, m.reputation.Reputation, m.reputation.Level))
		}
		m.writeChatContent()
		return m, m.loadReputation()

	case "/history":
		m.loading = true
		m.writeChatContent()
		return m, m.loadHistory()

	case "/quest":
		m.loading = true
		m.progressTick = 0
		m.addLine(lineSystem, fmt.Sprintf("Asking %s for a quest...", m.npc.Name))
		m.writeChatContent()
		return m, tea.Batch(m.requestQuest(arg), progressTick())

	case "/copy":
		if m.lastReply == "" {
			m.addLine(lineSystem, "Nothing to copy yet.")
		} else if err := clipboard.WriteAll(m.lastReply); err != nil {
			m.addLine(lineError, fmt.Sprintf("could not copy to clipboard: %v", err))
		} else {
			m.addLine(lineSystem, "Copied the last reply to the clipboard.")
		}

	default:
		m.addLine(lineSystem, fmt.Sprintf("Unknown command %s. Type /help for commands.", name))
	}

	m.writeChatContent()
	return m, nil
}

func formatHistory(history []actor.ConversationEntry) string {
	if len(history) == 0 {
		return "No conversation history yet."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Last %d exchanges (oldest first):", len(history)))
	for i := len(history) - 1; i >= 0; i-- {
		e := history[i]
		b.WriteString(fmt.Sprintf("\n[%s] You: %s\n    Reply: %s", e.Timestamp.Local().Format("Jan 2 15:04"), e.PlayerMessage, e.NPCResponse))
		if rep, ok := e.Context[actor.ContextKeyReputation]; ok {
			b.WriteString(" (reputation " + rep + ")")
		}
	}
	return b.String()
}

func formatQuest(q *actor.Quest) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("QUEST: %s [%s]\n%s\nReward: %s", q.Title, titleCaser.String(q.Difficulty), q.Description, q.Reward))
	for i, o := range q.Objectives {
		b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, o))
	}
	return b.String()
}

func (m ConsoleUI) lookupNPC(id string) tea.Cmd {
	return func() tea.Msg {
		npc, err := m.client.getNPC(id)
		return npcLoadedMsg{npc, err}
	}
}

func (m ConsoleUI) createNPC(spec actor.NPCSpec) tea.Cmd {
	return func() tea.Msg {
		npc, err := m.client.createNPC(spec)
		return npcLoadedMsg{npc, err}
	}
}

func (m ConsoleUI) sendChatMessage(message string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.sendChat(chat.ChatRequest{
			PlayerID: m.config.PlayerID,
			NPCID:    m.npc.ID,
			Message:  message,
		})
		return chatResponseMsg{resp, err}
	}
}

func (m ConsoleUI) loadReputation() tea.Cmd {
	return func() tea.Msg {
		rep, err := m.client.getReputation(m.config.PlayerID, m.npc.ID)
		return reputationMsg{rep, err}
	}
}

func (m ConsoleUI) loadHistory() tea.Cmd {
	return func() tea.Msg {
		history, err := m.client.getHistory(m.config.PlayerID, m.npc.ID, historyPageSize)
		return historyMsg{history, err}
	}
}

func (m ConsoleUI) requestQuest(playerContext string) tea.Cmd {
	return func() tea.Msg {
		quest, err := m.client.generateQuest(chat.QuestRequest{
			PlayerID: m.config.PlayerID,
			NPCID:    m.npc.ID,
			Context:  playerContext,
		})
		return questMsg{quest, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderModal(title, body string, width int) string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(title))
	content.WriteString("\n\n")
	content.WriteString(body)

	modal := modalStyle.Width(width).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSelectNPC() string {
	var body strings.Builder
	body.WriteString("Who would you like to talk to?\n\n")
	body.WriteString(m.textarea.View())
	body.WriteString("\n\n")
	switch {
	case m.loading:
		body.WriteString(systemStyle.Render("Looking up NPC..."))
	case m.err != nil:
		body.WriteString(errorStyle.Render(m.err.Error()))
	default:
		body.WriteString(promptStyle.Render("Enter to continue, Ctrl+C to exit"))
	}
	return m.renderModal("Choose an NPC", body.String(), 60)
}

func (m ConsoleUI) renderCreateNPC() string {
	var body strings.Builder
	body.WriteString(fmt.Sprintf("No NPC named %q exists yet. Pick a personality to create one:\n\n", m.pendingID))
	for i, p := range actor.Personalities {
		label := titleCaser.String(p.String())
		if i == m.selected {
			body.WriteString(modalSelectedItemStyle.Render("▶ " + label))
		} else {
			body.WriteString(modalItemStyle.Render("  " + label))
		}
		body.WriteString("\n")
	}
	body.WriteString("\n")
	switch {
	case m.loading:
		body.WriteString(systemStyle.Render("Creating NPC..."))
	case m.err != nil:
		body.WriteString(errorStyle.Render(m.err.Error()))
	default:
		body.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to create, Ctrl+C to exit"))
	}
	return m.renderModal("Create NPC", body.String(), 60)
}

func (m ConsoleUI) renderQuitModal() string {
	body := "Are you sure you want to leave?\n\n" +
		promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit")
	return m.renderModal("Quit?", body, 50)
}

func (m ConsoleUI) View() string {
	if !m.ready || m.width == 0 || m.height == 0 {
		return "\n  Initializing..."
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	switch m.stage {
	case stageSelectNPC:
		return m.renderSelectNPC()
	case stageCreateNPC:
		return m.renderCreateNPC()
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"", // Add empty line for spacing
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}

	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓") // Blinking effect at the progress point
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
