package main

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/rcosta/eldrida-engine/pkg/chat"
	"github.com/rcosta/eldrida-engine/pkg/state"
)

const (
	AgentName       = "Game Master"
	PlaceHolderText = "What do you do next?"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	gameState    *state.GameState
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// New-game modal state
	showStartModal bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type commandResponseMsg struct {
	response *chat.CommandResponse
	err      error
}

type gameStateMsg struct {
	gameState *state.GameState
	err       error
}

type gameStateCreatedMsg struct {
	gameState *state.GameState
	err       error
}

type progressTickMsg struct{}

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

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

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
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
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
		config:         cfg,
		client:         client,
		textarea:       ta,
		chatViewport:   chatVp,
		metaViewport:   metaVp,
		ready:          false,
		showStartModal: true,
	}
}

func writeInitialContent(gs *state.GameState, chatWidth int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ELDRIDA") + "\n\n")
	content.WriteString("Type your commands below to play.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	if gs != nil && len(gs.History) > 0 {
		// Use the same formatting as writeChatContent for consistency
		formattedMsg := formatNarratorResponse(gs.History[0].Content, chatWidth)
		content.WriteString(formattedMsg + "\n\n")
	}
	return content.String()
}

func writeMetadata(gs *state.GameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	content.WriteString("Location:\n")
	content.WriteString(gs.Location.Name + "\n\n")

	content.WriteString("Stage:\n")
	if gs.CurrentStage == nil {
		content.WriteString("Victory!\n\n")
	} else {
		content.WriteString(fmt.Sprintf("%d of 5\n\n", *gs.CurrentStage))
	}

	content.WriteString("Health:\n")
	content.WriteString(fmt.Sprintf("%.1f / %.0f\n\n", gs.Health, state.MaxHealth))

	content.WriteString("Skill:\n")
	content.WriteString(fmt.Sprintf("%.0f\n\n", gs.Skill))

	if len(gs.Resources) > 0 {
		content.WriteString("Inventory:\n")
		items := make([]string, 0, len(gs.Resources))
		for item := range gs.Resources {
			items = append(items, item)
		}
		sort.Strings(items)
		for _, item := range items {
			content.WriteString(fmt.Sprintf("• %s x%d\n", item, gs.Resources[item]))
		}
		content.WriteString("\n")
	} else {
		content.WriteString("Inventory:\nEmpty\n\n")
	}

	content.WriteString("Clues:\n")
	content.WriteString(fmt.Sprintf("%d found\n\n", len(gs.Clues)))

	if gs.ActiveCombat != nil {
		content.WriteString("In combat!\n\n")
	}
	if gs.ActivePuzzle != nil {
		content.WriteString("Riddle pending\n\n")
	}
	if gs.WaitingForOption {
		content.WriteString("Choose 1, 2 or 3\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Ctrl+Y: Copy last\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /map: Known map\n")
	content.WriteString("• /clues: Clues\n")

	return content.String()
}

// writeChatContent builds the chat content from game state for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	if m.gameState == nil || len(m.gameState.History) == 0 {
		// No history, just show initial content
		m.chatViewport.SetContent(writeInitialContent(m.gameState, chatWidth))
		return
	}

	var content strings.Builder

	// Add title and intro
	content.WriteString(titleStyle.Render("ELDRIDA") + "\n\n")
	content.WriteString("A shadow grows over the city of Eldrida.\n")
	content.WriteString("Type your commands below to play.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	// Reformat all history for the new width
	for _, msg := range m.gameState.History {
		switch msg.Role {
		case "assistant", "system":
			formattedMsg := formatNarratorResponse(msg.Content, chatWidth)
			content.WriteString(formattedMsg + "\n\n")
		case "user":
			userMsg := userStyle.Render("You: ") + wordwrap.String(msg.Content, chatWidth-6) + "\n\n"
			content.WriteString(userMsg)
		}
	}

	// If currently loading, add the progress bar
	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle start modal first
	if m.showStartModal {
		return m.updateStartModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// Pass all mouse events to the chat viewport for scrolling and
		// text selection. The viewport ignores events outside its bounds.
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)

		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		// Reformat all content for the new width
		m.writeChatContent()

		if m.gameState != nil {
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if last := m.lastNarratorMessage(); last != "" {
				if err := clipboard.WriteAll(last); err == nil {
					currentContent := m.chatViewport.View()
					note := promptStyle.Render("Copied last response to clipboard.") + "\n\n"
					m.chatViewport.SetContent(currentContent + note)
					m.chatViewport.GotoBottom()
				}
			}
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0 // Reset progress animation

			// Show the player's command right away
			m.gameState.AppendHistory(chat.ChatRoleUser, input)
			m.writeChatContent()

			return m, tea.Batch(m.sendCommand(input), progressTick())
		}

	case commandResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			// Remove loading bar and add the error by reformatting
			m.writeChatContent()
			currentContent := m.chatViewport.View()
			errorMsg := errorStyle.Render("Error: "+msg.err.Error()) + "\n\n"
			m.chatViewport.SetContent(currentContent + errorMsg)
		} else {
			m.gameState.AppendHistory(chat.ChatRoleAgent, msg.response.Narrative)
			m.writeChatContent()
		}
		m.chatViewport.GotoBottom()
		return m, m.refreshGameState()

	case gameStateMsg:
		if msg.err == nil && msg.gameState != nil {
			m.gameState = msg.gameState
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()     // Refresh the chat content to update the progress bar
			return m, progressTick() // Continue the animation
		}
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func formatNarratorResponse(response string, width int) string {
	// Check if response already has a speaker prefix
	hasPrefix := false
	if idx := strings.Index(response, ":"); idx > 0 && idx <= 20 {
		speaker := response[:idx]
		if len(strings.Fields(speaker)) <= 2 {
			hasPrefix = true
		}
	}

	// If no prefix, we'll add the agent name so reduce available width
	wrapWidth := width
	if !hasPrefix {
		agentPrefix := AgentName + ": "
		wrapWidth = width - len(agentPrefix)
	}

	// Wrap the text to the available width
	wrappedResponse := wordwrap.String(response, wrapWidth)
	lines := strings.Split(wrappedResponse, "\n")
	var formattedLines []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			formattedLines = append(formattedLines, "")
			continue
		}

		if idx := strings.Index(trimmed, ":"); idx > 0 && idx <= 20 {
			speaker := trimmed[:idx]
			rest := trimmed[idx+1:]
			if len(strings.Fields(speaker)) <= 2 {
				formattedLines = append(formattedLines, speakerStyle.Render(speaker+":")+rest)
				continue
			}
		}

		formattedLines = append(formattedLines, line)
	}

	result := strings.Join(formattedLines, "\n")
	if !hasPrefix && !strings.HasPrefix(strings.TrimSpace(result), speakerStyle.Render("")) {
		result = narratorStyle.Render(AgentName+": ") + result
	}

	return result
}

// lastNarratorMessage returns the most recent assistant turn, unstyled.
func (m ConsoleUI) lastNarratorMessage() string {
	if m.gameState == nil {
		return ""
	}
	for i := len(m.gameState.History) - 1; i >= 0; i-- {
		if m.gameState.History[i].Role == chat.ChatRoleAgent {
			return m.gameState.History[i].Content
		}
	}
	return ""
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))

	switch cmd {
	case "/help":
		helpText := `
Commands:
• /help - Show this help
• /map - Show the places you know
• /clues - Show the clues you hold
• Ctrl+Y - Copy last response
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• Explore, talk to people, and investigate who to trust
• During a search, answer with a number between 1 and 3
`
		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + titleStyle.Render("Help:") + helpText + "\n")
		m.chatViewport.GotoBottom()

	case "/map":
		var mapText strings.Builder
		mapText.WriteString(titleStyle.Render("Known Map:") + "\n")
		if m.gameState == nil || len(m.gameState.KnownMap) == 0 {
			mapText.WriteString("You have not learned of any places yet.\n")
		} else {
			names := make([]string, 0, len(m.gameState.KnownMap))
			for name := range m.gameState.KnownMap {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				loc := m.gameState.KnownMap[name]
				marker := "•"
				if name == m.gameState.Location.Name {
					marker = "▶"
				}
				mapText.WriteString(fmt.Sprintf("%s %s", marker, name))
				if len(loc.Exits) > 0 {
					mapText.WriteString(fmt.Sprintf(" (exits: %s)", strings.Join(loc.Exits, ", ")))
				}
				mapText.WriteString("\n")
			}
		}
		mapText.WriteString("\n")

		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + mapText.String())
		m.chatViewport.GotoBottom()

	case "/clues":
		var cluesText strings.Builder
		cluesText.WriteString(titleStyle.Render("Clues:") + "\n")
		if m.gameState == nil || len(m.gameState.Clues) == 0 {
			cluesText.WriteString("No clues found yet.\n")
		} else {
			for _, c := range m.gameState.Clues {
				cluesText.WriteString(fmt.Sprintf("• %s\n", c.Content))
			}
		}
		cluesText.WriteString("\n")

		currentContent := m.chatViewport.View()
		m.chatViewport.SetContent(currentContent + cluesText.String())
		m.chatViewport.GotoBottom()
	}

	m.textarea.Reset()
	return m, nil
}

func (m ConsoleUI) sendCommand(command string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendCommand(m.client, m.config.APIBaseURL, m.gameState.ID, command)
		return commandResponseMsg{resp, err}
	}
}

func (m ConsoleUI) refreshGameState() tea.Cmd {
	return func() tea.Msg {
		gs, err := getGameState(m.client, m.config.APIBaseURL, m.gameState.ID)
		return gameStateMsg{gs, err}
	}
}

func (m ConsoleUI) createGame() tea.Cmd {
	return func() tea.Msg {
		gs, err := createGameState(m.client, m.config.APIBaseURL)
		return gameStateCreatedMsg{gs, err}
	}
}

func (m ConsoleUI) updateStartModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case gameStateCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.gameState = msg.gameState
			m.showStartModal = false
			// Set up viewport dimensions now that we have a game state
			if m.width > 0 && m.height > 0 {
				chatWidth := int(float64(m.width)*0.75) - 4
				metaWidth := m.width - chatWidth - 6
				m.chatViewport.Width = chatWidth - 2
				m.chatViewport.Height = m.height - 7
				m.metaViewport.Width = metaWidth - 2
				m.metaViewport.Height = m.height - 4
				m.textarea.SetWidth(chatWidth - 4)
			}
			m.chatViewport.SetContent(writeInitialContent(m.gameState, m.chatViewport.Width-6))
			m.metaViewport.SetContent(writeMetadata(m.gameState))
			m.textarea.Focus() // Ensure textarea gets focus when modal closes
			m.ready = true
		}
		return m, textarea.Blink // Return focus command

	case tea.KeyMsg:
		if m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if !m.loading {
				m.loading = true
				return m, m.createGame()
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showStartModal {
					// Still on the start screen, nothing to focus
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to quit your adventure?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderStartModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to start a game: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Creating Game..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("The city of Eldrida is taking shape..."))
	} else {
		content.WriteString(modalTitleStyle.Render("ELDRIDA"))
		content.WriteString("\n\n")
		content.WriteString("A text adventure of clues, allies and betrayal.")
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Press Enter to begin, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showStartModal {
		return m.renderStartModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
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
