package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run feeds msgs through Update and executes every resulting command on its
// own goroutine. Results come back over one channel and are applied in
// arrival order on the calling goroutine. Run returns once no command is
// outstanding, or when ctx is done.
func Run(ctx context.Context, m Model, msgs ...tea.Msg) (Model, error) {
	results := make(chan tea.Msg)
	pending := 0
	queue := append([]tea.Msg(nil), msgs...)

	exec := func(cmd tea.Cmd) {
		if cmd == nil {
			return
		}
		pending++
		go func() {
			msg := cmd()
			select {
			case results <- msg:
			case <-ctx.Done():
			}
		}()
	}

	for {
		for len(queue) > 0 {
			msg := queue[0]
			queue = queue[1:]
			switch typed := msg.(type) {
			case nil:
				continue
			case tea.BatchMsg:
				for _, cmd := range typed {
					exec(cmd)
				}
				continue
			}
			var cmd tea.Cmd
			m, cmd = m.Update(msg)
			exec(cmd)
		}
		if pending == 0 {
			return m, nil
		}
		select {
		case msg := <-results:
			pending--
			queue = append(queue, msg)
		case <-ctx.Done():
			return m, ctx.Err()
		}
	}
}
