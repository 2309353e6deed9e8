package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/diogo/optchat/internal/dispatch"
	apperrors "github.com/diogo/optchat/internal/errors"
	"github.com/diogo/optchat/internal/models"
	"github.com/diogo/optchat/internal/render"
	"github.com/diogo/optchat/internal/transcript"
)

// lineChat drives a dispatcher one input line at a time
type lineChat struct {
	out     io.Writer
	spinOut io.Writer
	runner  *dispatch.Runner
	d       *dispatch.Dispatcher
	styled  bool
	width   int

	// printed counts store entries already written to out
	printed int
}

// runPlain runs the line-mode chat until EOF or an exit command. styled
// enables colors and the pending spinner.
func runPlain(ctx context.Context, deps *Dependencies, d *dispatch.Dispatcher, styled bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	r := dispatch.NewRunner(d)
	defer r.Close()

	width := 80
	if deps.TerminalWidth != nil {
		width = deps.TerminalWidth()
	}

	lc := &lineChat{
		out:     deps.Out,
		spinOut: deps.Err,
		runner:  r,
		d:       d,
		styled:  styled,
		width:   width,
	}
	lc.flush()

	scanner := bufio.NewScanner(deps.In)
	for {
		lc.prompt()
		if !scanner.Scan() {
			break
		}
		done, err := lc.handle(ctx, scanner.Text())
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	// EOF: let an in-flight reply land before closing
	if err := r.Wait(ctx); err != nil {
		return err
	}
	lc.flush()
	return nil
}

func (lc *lineChat) prompt() {
	if lc.styled {
		fmt.Fprint(lc.out, optionStyle.Render("› "))
	}
}

// handle processes one input line; done is true when the user asked to leave
func (lc *lineChat) handle(ctx context.Context, line string) (done bool, err error) {
	input := strings.TrimSpace(line)

	switch {
	case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
		return true, nil

	case input == "/options":
		if opts, ok := lc.d.Store().LatestOptions(); ok {
			lc.printOptions(opts, models.LayoutVertical)
		} else {
			lc.notice("No options to choose from")
		}
		return false, nil

	case input == "/export" || strings.HasPrefix(input, "/export "):
		lc.export(strings.TrimSpace(strings.TrimPrefix(input, "/export")))
		return false, nil
	}

	if n, ok := optionIndex(input); ok {
		opts, _ := lc.d.Store().LatestOptions()
		if n < 1 || n > len(opts) {
			lc.notice(fmt.Sprintf("No option %d", n))
			return false, nil
		}
		err = lc.runner.SubmitOption(opts[n-1])
	} else {
		err = lc.runner.SubmitText(line)
	}

	switch {
	case apperrors.IsBusy(err):
		lc.notice("Still preparing the previous answer, please wait")
		return false, nil
	case err != nil:
		return false, err
	}

	return false, lc.await(ctx)
}

// optionIndex parses "/N" or "#N"
func optionIndex(input string) (int, bool) {
	if len(input) < 2 || (input[0] != '/' && input[0] != '#') {
		return 0, false
	}
	n, err := strconv.Atoi(input[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// await shows the pending placeholder until the reply lands
func (lc *lineChat) await(ctx context.Context) error {
	placeholder, pending := lc.flush()
	if !pending {
		return nil
	}

	var spin *spinner
	if lc.styled {
		spin = newSpinner(lc.spinOut, placeholder.Content)
		spin.start()
	} else {
		fmt.Fprintln(lc.out, "… "+placeholder.Content)
	}

	err := lc.runner.Wait(ctx)
	if spin != nil {
		spin.halt()
	}
	if err != nil {
		return err
	}

	lc.flush()
	return nil
}

// flush writes every settled entry not yet printed. It stops at a
// placeholder and returns it.
func (lc *lineChat) flush() (models.Message, bool) {
	msgs := lc.d.Messages()
	for lc.printed < len(msgs) {
		msg := msgs[lc.printed]
		if msg.Placeholder {
			return msg, true
		}
		lc.printMessage(msg)
		lc.printed++
	}
	return models.Message{}, false
}

func (lc *lineChat) printMessage(msg models.Message) {
	if msg.Role == models.RoleUser {
		if lc.styled {
			fmt.Fprintln(lc.out, userLineStyle.Render("You: "+msg.Content))
		} else {
			fmt.Fprintln(lc.out, "You: "+msg.Content)
		}
		return
	}

	if !lc.styled {
		fmt.Fprintln(lc.out, "Support: "+msg.Content)
	} else {
		bubbleWidth := lc.width - 4
		if bubbleWidth > 100 {
			bubbleWidth = 100
		}
		if bubbleWidth < 20 {
			bubbleWidth = 20
		}
		fmt.Fprintln(lc.out, assistantLabelStyle.Render("✦ Support"))
		fmt.Fprintln(lc.out, assistantBubbleStyle.Width(bubbleWidth).Render(styleSpans(msg.Content)))
	}

	if msg.HasOptions() {
		lc.printOptions(msg.Options, msg.EffectiveLayout())
	}
}

// styleSpans underlines image links
func styleSpans(content string) string {
	var sb strings.Builder
	for _, span := range render.Spans(content) {
		if span.IsImage() {
			sb.WriteString(imageStyle.Render(span.Text))
		} else {
			sb.WriteString(span.Text)
		}
	}
	return sb.String()
}

// printOptions lists options numbered from 1; horizontal sets share a line
func (lc *lineChat) printOptions(options []string, layout models.Layout) {
	items := make([]string, len(options))
	for i, o := range options {
		item := fmt.Sprintf("[%d] %s", i+1, o)
		if lc.styled {
			item = optionStyle.Render(item)
		}
		items[i] = item
	}

	if layout == models.LayoutVertical {
		for _, item := range items {
			fmt.Fprintln(lc.out, "  "+item)
		}
		return
	}
	fmt.Fprintln(lc.out, "  "+strings.Join(items, "  "))
}

func (lc *lineChat) notice(text string) {
	if lc.styled {
		text = noticeStyle.Render(text)
	}
	fmt.Fprintln(lc.out, text)
}

func (lc *lineChat) export(path string) {
	if path == "" {
		path = fmt.Sprintf("optchat-%s.md", time.Now().Format("20060102-150405"))
	}
	if err := transcript.Write(path, lc.d.Messages()); err != nil {
		fmt.Fprintln(lc.out, formatErrorMessage(err, "Export failed"))
		return
	}
	msg := "Transcript saved to " + path
	if lc.styled {
		msg = successStyle.Render("✓ " + msg)
	}
	fmt.Fprintln(lc.out, msg)
}
