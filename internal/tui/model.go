package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/optchat/internal/dispatch"
	apperrors "github.com/diogo/optchat/internal/errors"
	"github.com/diogo/optchat/internal/models"
	"github.com/diogo/optchat/internal/transcript"
)

// Animation tick message
type animationTickMsg time.Time

// resolveMsg is delivered when a ticket's delay has elapsed
type resolveMsg struct {
	ticket uint64
}

// focusArea is the part of the widget receiving keys
type focusArea int

const (
	focusInput focusArea = iota
	focusOptions
	focusImages
)

// optionRef locates one option button in the conversation
type optionRef struct {
	msg  int
	idx  int
	text string
}

// imageRef locates one image link in the conversation
type imageRef struct {
	msg int
	nth int // index among the message's image spans
	url string
}

// ChatOptions configures the chat widget
type ChatOptions struct {
	Title           string
	CopyToClipboard bool
}

// Model represents the chat widget state. The conversation itself lives in
// the dispatcher's store; the model only holds view state.
type Model struct {
	dispatcher *dispatch.Dispatcher
	opts       ChatOptions

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// View state
	ready          bool
	focus          focusArea
	optionCursor   int
	imageCursor    int
	modal          *ImageModal
	notice         string
	err            error
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat model over d
func NewChatModel(d *dispatch.Dispatcher, opts ChatOptions) Model {
	if opts.Title == "" {
		opts.Title = "Support Chat"
	}

	ta := textarea.New()
	ta.Placeholder = "ご質問を入力してください..."
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		dispatcher: d,
		opts:       opts,
		textarea:   ta,
		spinner:    s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// resolveAfter schedules the resolution of t after its delay
func resolveAfter(t dispatch.Ticket) tea.Cmd {
	id := t.ID
	return tea.Tick(t.Delay, func(time.Time) tea.Msg {
		return resolveMsg{ticket: id}
	})
}

// scrollKeys keeps letter keys free for typing
func scrollKeys() viewport.KeyMap {
	km := viewport.DefaultKeyMap()
	km.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	km.PageUp = key.NewBinding(key.WithKeys("pgup"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	km.Up = key.NewBinding(key.WithKeys("up"))
	km.Down = key.NewBinding(key.WithKeys("down"))
	return km
}

func (m Model) awaiting() bool {
	return m.dispatcher.State() == dispatch.StateAwaitingResponse
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.modal != nil {
		return m.updateModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 2 // Status bar and notice line
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.viewport.KeyMap = scrollKeys()
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.dispatcher.Close()
			return m, tea.Quit

		case "tab":
			m.cycleFocus(1)
			return m, nil

		case "shift+tab":
			m.cycleFocus(-1)
			return m, nil

		case "esc":
			if m.focus != focusInput {
				m.setFocus(focusInput)
				return m, nil
			}
			m.dispatcher.Close()
			return m, tea.Quit
		}

		switch m.focus {
		case focusOptions:
			return m.updateOptionFocus(msg)
		case focusImages:
			return m.updateImageFocus(msg)
		}

		if msg.String() == "enter" {
			return m.submitInput()
		}

	case resolveMsg:
		next, ok := m.dispatcher.Resolve(msg.ticket)
		if ok {
			if m.focus == focusOptions {
				m.optionCursor = m.latestOptionStart()
			}
			m.updateViewport()
			m.viewport.GotoBottom()
		}
		if !next.IsZero() {
			m.notice = ""
			cmds = append(cmds, resolveAfter(next), animationTick())
		}

	case spinner.TickMsg, animationTickMsg:
		cmds = append(cmds, m.advanceTicks(msg))
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok && m.focus == focusInput {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// advanceTicks steps the spinner and loading animation while a reply is pending
func (m *Model) advanceTicks(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.awaiting() {
			m.updateViewport()
		}
		return cmd
	case animationTickMsg:
		if m.awaiting() {
			m.animationFrame++
			return animationTick()
		}
	}
	return nil
}

// updateModal routes messages to the open image modal
func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		m.dispatcher.Close()
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case spinner.TickMsg, animationTickMsg:
		// the pending animation keeps running behind the modal
		return m, m.advanceTicks(msg)
	case resolveMsg:
		// responses keep arriving behind the modal
		next, ok := m.dispatcher.Resolve(msg.ticket)
		if ok {
			m.updateViewport()
			m.viewport.GotoBottom()
		}
		if !next.IsZero() {
			cmds = append(cmds, resolveAfter(next))
		}
	}

	modal, cmd := m.modal.Update(msg)
	cmds = append(cmds, cmd)
	if modal.Closed() {
		m.modal = nil
	} else {
		m.modal = &modal
	}
	return m, tea.Batch(cmds...)
}

// submitInput handles Enter in the input box
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	raw := m.textarea.Value()
	input := strings.TrimSpace(raw)

	switch {
	case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
		m.dispatcher.Close()
		return m, tea.Quit

	case input == "/export" || strings.HasPrefix(input, "/export "):
		m.textarea.Reset()
		m.exportTranscript(strings.TrimSpace(strings.TrimPrefix(input, "/export")))
		return m, nil
	}

	queuedBefore := m.dispatcher.Queued()
	t, err := m.dispatcher.SubmitText(raw)
	if err != nil {
		m.handleSubmitError(err)
		return m, nil
	}
	m.textarea.Reset()

	if t.IsZero() {
		if m.dispatcher.Queued() > queuedBefore {
			m.notice = fmt.Sprintf("Queued (%d waiting)", m.dispatcher.Queued())
		}
		return m, nil
	}
	cmd := m.afterSubmit(t)
	return m, cmd
}

// submitOption sends the option under the cursor
func (m Model) submitOption(option string) (tea.Model, tea.Cmd) {
	queuedBefore := m.dispatcher.Queued()
	t, err := m.dispatcher.SubmitOption(option)
	if err != nil {
		m.handleSubmitError(err)
		return m, nil
	}
	if t.IsZero() {
		if m.dispatcher.Queued() > queuedBefore {
			m.notice = fmt.Sprintf("Queued (%d waiting)", m.dispatcher.Queued())
		}
		return m, nil
	}
	cmd := m.afterSubmit(t)
	return m, cmd
}

func (m *Model) afterSubmit(t dispatch.Ticket) tea.Cmd {
	m.notice = ""
	m.err = nil
	m.animationFrame = 0
	m.updateViewport()
	m.viewport.GotoBottom()

	return tea.Batch(
		resolveAfter(t),
		m.spinner.Tick,
		animationTick(),
	)
}

func (m *Model) handleSubmitError(err error) {
	switch {
	case apperrors.IsBusy(err):
		m.notice = "Still preparing the previous answer, please wait"
	default:
		m.err = err
	}
}

// exportTranscript writes the conversation to path, or to a timestamped
// Markdown file in the working directory when path is empty
func (m *Model) exportTranscript(path string) {
	if path == "" {
		path = fmt.Sprintf("optchat-%s.md", time.Now().Format("20060102-150405"))
	}
	if err := transcript.Write(path, m.dispatcher.Messages()); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.notice = "Transcript saved to " + path
}

// ═══════════════════════════════════════════════════════════════════════
// FOCUS
// ═══════════════════════════════════════════════════════════════════════

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	switch f {
	case focusInput:
		m.textarea.Focus()
	case focusOptions:
		m.textarea.Blur()
		m.optionCursor = m.latestOptionStart()
	case focusImages:
		m.textarea.Blur()
		m.imageCursor = len(m.images()) - 1
	}
	m.updateViewport()
}

// cycleFocus moves focus by dir, skipping areas that have nothing to select
func (m *Model) cycleFocus(dir int) {
	areas := []focusArea{focusInput}
	if len(m.options()) > 0 {
		areas = append(areas, focusOptions)
	}
	if len(m.images()) > 0 {
		areas = append(areas, focusImages)
	}

	current := 0
	for i, a := range areas {
		if a == m.focus {
			current = i
		}
	}
	next := (current + dir + len(areas)) % len(areas)
	m.setFocus(areas[next])
}

func (m Model) updateOptionFocus(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := m.options()
	if len(opts) == 0 {
		m.setFocus(focusInput)
		return m, nil
	}

	switch msg.String() {
	case "left", "up", "h", "k":
		m.optionCursor--
		if m.optionCursor < 0 {
			m.optionCursor = len(opts) - 1
		}
	case "right", "down", "l", "j":
		m.optionCursor++
		if m.optionCursor >= len(opts) {
			m.optionCursor = 0
		}
	case "home", "g":
		m.optionCursor = 0
	case "end", "G":
		m.optionCursor = len(opts) - 1
	case "enter", " ":
		if m.optionCursor >= 0 && m.optionCursor < len(opts) {
			return m.submitOption(opts[m.optionCursor].text)
		}
	}

	m.updateViewport()
	return m, nil
}

func (m Model) updateImageFocus(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	imgs := m.images()
	if len(imgs) == 0 {
		m.setFocus(focusInput)
		return m, nil
	}

	switch msg.String() {
	case "left", "up", "h", "k":
		m.imageCursor--
		if m.imageCursor < 0 {
			m.imageCursor = len(imgs) - 1
		}
	case "right", "down", "l", "j":
		m.imageCursor++
		if m.imageCursor >= len(imgs) {
			m.imageCursor = 0
		}
	case "enter", " ":
		if m.imageCursor >= 0 && m.imageCursor < len(imgs) {
			m.openImage(imgs[m.imageCursor].url)
		}
	}

	m.updateViewport()
	return m, nil
}

// openImage shows url in the modal viewer
func (m *Model) openImage(url string) {
	modal := NewImageModal(url, m.opts.CopyToClipboard)
	modal.width = m.width
	modal.height = m.height
	m.modal = &modal
}

// options flattens every option button in the conversation, oldest first
func (m Model) options() []optionRef {
	var refs []optionRef
	for i, msg := range m.dispatcher.Messages() {
		for j, o := range msg.Options {
			refs = append(refs, optionRef{msg: i, idx: j, text: o})
		}
	}
	return refs
}

// images flattens every image link in the conversation, oldest first
func (m Model) images() []imageRef {
	var refs []imageRef
	for i, msg := range m.dispatcher.Messages() {
		for j, url := range imageURLs(msg.Content) {
			refs = append(refs, imageRef{msg: i, nth: j, url: url})
		}
	}
	return refs
}

// latestOptionStart returns the flat index of the first option of the most
// recent option set
func (m Model) latestOptionStart() int {
	opts := m.options()
	if len(opts) == 0 {
		return 0
	}
	lastMsg := opts[len(opts)-1].msg
	for i, o := range opts {
		if o.msg == lastMsg {
			return i
		}
	}
	return 0
}

// selectedOption returns the option under the cursor when options have focus
func (m Model) selectedOption() (optionRef, bool) {
	if m.focus != focusOptions {
		return optionRef{}, false
	}
	opts := m.options()
	if m.optionCursor < 0 || m.optionCursor >= len(opts) {
		return optionRef{}, false
	}
	return opts[m.optionCursor], true
}

// selectedImage returns the image under the cursor when images have focus
func (m Model) selectedImage() (imageRef, bool) {
	if m.focus != focusImages {
		return imageRef{}, false
	}
	imgs := m.images()
	if m.imageCursor < 0 || m.imageCursor >= len(imgs) {
		return imageRef{}, false
	}
	return imgs[m.imageCursor], true
}

// ═══════════════════════════════════════════════════════════════════════
// VIEW
// ═══════════════════════════════════════════════════════════════════════

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.modal != nil {
		return m.modal.View()
	}

	var sections []string
	contentWidth := m.width - 4

	headerParts := []string{
		titleStyle.Render("✦ " + m.opts.Title),
		hintStyle.Render("  •  "),
		subtitleStyle.Render("session " + shortSession(m.dispatcher.Session())),
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View())
	sections = append(sections, messagesPanel)

	label := "You"
	if m.focus != focusInput {
		label = "You (Tab to type)"
	}
	inputContent := lipgloss.JoinVertical(
		lipgloss.Left,
		inputLabelStyle.Render(label),
		m.textarea.View(),
	)
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	switch {
	case m.awaiting():
		sections = append(sections, m.renderLoadingAnimation())
	case m.notice != "":
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func shortSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// renderLoadingAnimation renders a colorful animated pending indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	frame := m.animationFrame

	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	dots := ""
	numDots := (frame / 3) % 4
	for i := 0; i < numDots; i++ {
		dotColor := gradientColors[(frame+i)%len(gradientColors)]
		dots += lipgloss.NewStyle().Foreground(dotColor).Render("●")
	}
	for i := numDots; i < 3; i++ {
		dots += lipgloss.NewStyle().Foreground(colorTextMute).Render("○")
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" Preparing an answer ")
	if q := m.dispatcher.Queued(); q > 0 {
		text += hintStyle.Render(fmt.Sprintf("(%d queued) ", q))
	}

	return fmt.Sprintf("%s%s%s", spin, text, dots)
}

// renderStatusBar renders the bottom status bar with shortcuts for the focused area
func (m Model) renderStatusBar(width int) string {
	type shortcut struct {
		key  string
		desc string
	}

	var shortcuts []shortcut
	switch m.focus {
	case focusOptions:
		shortcuts = []shortcut{{"←→", "Choose"}, {"Enter", "Select"}, {"Tab", "Next"}, {"Esc", "Back"}}
	case focusImages:
		shortcuts = []shortcut{{"↑↓", "Choose"}, {"Enter", "View"}, {"Tab", "Next"}, {"Esc", "Back"}}
	default:
		shortcuts = []shortcut{{"Enter", "Send"}, {"Tab", "Options"}, {"↑↓", "Scroll"}, {"Esc", "Quit"}}
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	innerWidth := m.viewport.Width - 2
	bubbleWidth := innerWidth * 3 / 4
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	selOpt, hasOpt := m.selectedOption()
	selImg, hasImg := m.selectedImage()

	for i, msg := range m.dispatcher.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		highlight := -1
		if hasImg && selImg.msg == i {
			highlight = selImg.nth
		}

		switch {
		case msg.Role == models.RoleUser:
			label := userLabelStyle.Render("You ⬤")
			body := renderContent(msg.Content, highlight)
			bubble := userBubbleStyle.Width(fitWidth(msg.Content, bubbleWidth)).Render(body)
			block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
			content.WriteString(lipgloss.PlaceHorizontal(innerWidth, lipgloss.Right, block))

		case msg.Placeholder:
			label := assistantLabelStyle.Render("✦ Support")
			body := m.spinner.View() + " " + placeholderStyle.Render(msg.Content)
			content.WriteString(label + "\n" + assistantBubbleStyle.Render(body))

		default:
			label := assistantLabelStyle.Render("✦ Support")
			body := renderContent(msg.Content, highlight)
			if msg.HasOptions() {
				selected := -1
				if hasOpt && selOpt.msg == i {
					selected = selOpt.idx
				}
				body = lipgloss.JoinVertical(lipgloss.Left,
					body,
					"",
					renderOptions(msg, selected, bubbleWidth-4),
				)
			}
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(body)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// fitWidth shrinks short user bubbles to their content
func fitWidth(content string, limit int) int {
	w := lipgloss.Width(content) + 4
	if w > limit {
		return limit
	}
	return w
}

// RunChat starts the chat TUI and closes the dispatcher when it exits
func RunChat(d *dispatch.Dispatcher, opts ChatOptions) error {
	defer d.Close()

	p := tea.NewProgram(
		NewChatModel(d, opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
