package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/google/uuid"

	"github.com/jaminalder/tictactoe-solver/internal/app"
	"github.com/jaminalder/tictactoe-solver/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"iter": func(n int) []int {
			a := make([]int, n)
			for i := range a {
				a[i] = i
			}
			return a
		},
		"cellSymbol": func(c domain.Mark) string {
			if c == domain.Empty {
				return ""
			}
			return c.String()
		},
		"add": func(a, b int) int { return a + b },
		"mul": func(a, b int) int { return a * b },
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1>
<form action="/game" method="post">
  <select name="mode">
    <option value="pvp">Player vs Player</option>
    <option value="ai">Player vs AI</option>
  </select>
  <button>Create</button>
</form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div id="board-slot" sse-swap="board" hx-target="#board" hx-swap="outerHTML">{{template "board" .}}</div>
</div>`))
	board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board">
  <p class="status">{{.Status}}</p>
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  {{range $r := iter 3}}
  <div class="row">
    {{range $c := iter 3}}
      {{$i := add (mul $r 3) $c}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="r" value="{{$r}}">
        <input type="hidden" name="c" value="{{$c}}">
        <button type="submit"{{if index $.Highlight $i}} class="highlight-win"{{end}}>{{cellSymbol (index $.Board $i)}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  <div class="scores">
    <span>X: {{.Tally.XWins}}</span> <span>O: {{.Tally.OWins}}</span> <span>Draws: {{.Tally.Draws}}</span>
  </div>
  <div class="controls">
    {{if .Over}}<button hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML">Play Again</button>{{end}}
    <button hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML">Reset</button>
    <button hx-post="/game/{{.ID}}/mode" hx-vals='{"mode":"{{.NextMode}}"}' hx-target="#board" hx-swap="outerHTML">{{.ModeLabel}}</button>
  </div>
</div>
`

// boardData is what the board fragment renders.
type boardData struct {
	ID        string
	Board     domain.Board
	Highlight [domain.Size]bool
	Status    string
	Error     string
	Over      bool
	Tally     app.Tally
	ModeLabel string
	NextMode  app.Mode
}

func newBoardData(gs app.GameState, errMsg string) boardData {
	d := boardData{
		ID:    gs.ID,
		Board: gs.Game.Board,
		Error: errMsg,
		Over:  gs.Game.Over,
		Tally: gs.Tally,
	}
	switch {
	case gs.Game.Over && gs.Game.Winner != domain.Empty:
		d.Status = fmt.Sprintf("Player %v Wins!", gs.Game.Winner)
		if ln, ok := domain.WinningLine(gs.Game.Board); ok {
			for _, i := range ln {
				d.Highlight[i] = true
			}
		}
	case gs.Game.Over:
		d.Status = "It's a Draw!"
	default:
		d.Status = fmt.Sprintf("%v's Turn", gs.Game.Turn)
	}
	if gs.AIPlays() {
		d.ModeLabel, d.NextMode = "Player vs AI", app.ModePvP
	} else {
		d.ModeLabel, d.NextMode = "Player vs Player", app.ModeVsAI
	}
	return d
}

const playerCookie = "player_id"

// ensurePlayerCookie returns the caller's player id, issuing a UUIDv4 if missing.
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookie); err == nil && c.Value != "" {
		return c.Value
	}
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: playerCookie, Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return v
}
