package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/robalobadob/hangman/apps/go-server/internal/auth"
	"github.com/robalobadob/hangman/apps/go-server/internal/config"
	"github.com/robalobadob/hangman/apps/go-server/internal/daily"
	"github.com/robalobadob/hangman/apps/go-server/internal/db"
	"github.com/robalobadob/hangman/apps/go-server/internal/game"
	"github.com/robalobadob/hangman/apps/go-server/internal/render"
	"github.com/robalobadob/hangman/apps/go-server/internal/store"
	"github.com/robalobadob/hangman/apps/go-server/internal/words"
)

const testPool = `
categories:
  animals: [cat, dog]
  shows: ["Spy x Family"]
`

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type testEnv struct {
	ts    *httptest.Server
	srv   *Server
	pool  *words.Pool
	salt  string
	store store.Store
}

func newTestEnv(t *testing.T, pick int) *testEnv {
	t.Helper()
	return newTestEnvWith(t, pick, testPool)
}

func newTestEnvWith(t *testing.T, pick int, poolYAML string) *testEnv {
	t.Helper()
	cfg := config.FromEnv()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Game.DailySalt = "test-salt"

	d, err := db.Open(filepath.Join(t.TempDir(), "hangman.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := db.Migrate(d); err != nil {
		t.Fatal(err)
	}
	pool, err := words.ParseYAML([]byte(poolYAML))
	if err != nil {
		t.Fatal(err)
	}
	st := store.NewMemoryStore()
	srv := New(Deps{
		Config: cfg,
		Store:  st,
		DB:     d,
		Auth:   auth.NewService(d, cfg.Auth, false),
		Words:  pool,
		Random: func() game.RandomSource { return game.FixedSource(pick) },
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, srv: srv, pool: pool, salt: cfg.Game.DailySalt, store: st}
}

// client is one browser: it keeps its own cookies.
type client struct {
	t   *testing.T
	env *testEnv
	hc  *http.Client
}

func (e *testEnv) client(t *testing.T) *client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &client{t: t, env: e, hc: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.env.ts.URL+path, rd)
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.hc.Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			c.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return res.StatusCode
}

type gameResp struct {
	GameID   string `json:"gameId"`
	Category string `json:"category"`
	game.GuessResult
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *client) newGame(category string) gameResp {
	c.t.Helper()
	var g gameResp
	if code := c.do("POST", "/game/new", map[string]string{"category": category}, &g); code != http.StatusOK {
		c.t.Fatalf("new game: %d %s", code, g.Error)
	}
	return g
}

func (c *client) guess(id, letter string) (gameResp, int) {
	c.t.Helper()
	var g gameResp
	code := c.do("POST", "/game/guess", map[string]string{"gameId": id, "letter": letter}, &g)
	return g, code
}

func TestDiagnostics(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)

	var health map[string]any
	if code := c.do("GET", "/health", nil, &health); code != http.StatusOK || health["ok"] != true {
		t.Fatalf("health: %d %v", code, health)
	}
	var ws struct {
		Categories map[string]int `json:"categories"`
		Total      int            `json:"total"`
	}
	c.do("GET", "/words", nil, &ws)
	if ws.Total != 3 || ws.Categories["animals"] != 2 || ws.Categories["shows"] != 1 {
		t.Fatalf("words: %+v", ws)
	}
	var nf map[string]string
	if code := c.do("GET", "/nope", nil, &nf); code != http.StatusNotFound || nf["error"] != "not_found" {
		t.Fatalf("404: %d %v", code, nf)
	}

	req, _ := http.NewRequest(http.MethodOptions, env.ts.URL+"/game/new", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent || res.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("preflight: %d %v", res.StatusCode, res.Header)
	}
}

func TestPlayToWin(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)

	g := c.newGame("")
	if strings.Join(g.Reveal, "") != "___" || g.Status != game.StatusPlaying || g.AttemptsRemaining != game.MaxWrongGuesses {
		t.Fatalf("unexpected start: %+v", g)
	}
	if g.Word != "" {
		t.Fatal("secret word leaked before the round ended")
	}
	if g.Stage != render.Stage(0) || g.Message != "Guess the word!" {
		t.Fatalf("unexpected rendering: %q", g.Message)
	}

	var last gameResp
	for _, l := range []string{"C", "a", "t"} {
		var code int
		last, code = c.guess(g.GameID, l)
		if code != http.StatusOK || !last.WasCorrect {
			t.Fatalf("guess %s: %d %+v", l, code, last)
		}
	}
	if last.Status != game.StatusWon || !last.Finished || last.Word != "cat" {
		t.Fatalf("want won, got %+v", last)
	}
	if last.Message != "You win! The word was: cat" {
		t.Fatalf("message = %q", last.Message)
	}

	again, _ := c.guess(g.GameID, "z")
	if !again.Ignored || again.WrongCount != 0 || again.Status != game.StatusWon {
		t.Fatalf("guess after win must be a no-op: %+v", again)
	}
}

func TestPlayToLose(t *testing.T) {
	env := newTestEnv(t, 1)
	c := env.client(t)

	g := c.newGame("animals")
	if g.Category != "animals" {
		t.Fatalf("category = %q", g.Category)
	}
	var last gameResp
	for _, l := range []string{"x", "y", "z", "q", "w", "v"} {
		last, _ = c.guess(g.GameID, l)
	}
	if last.Status != game.StatusLost || last.AttemptsRemaining != 0 || last.Word != "dog" {
		t.Fatalf("want lost, got %+v", last)
	}
	if strings.Join(last.Reveal, "") != "dog" {
		t.Fatalf("loss must reveal the word, got %v", last.Reveal)
	}
	if last.Stage != render.Stage(game.MaxWrongGuesses) {
		t.Fatal("final stage not drawn")
	}
}

func TestGuessErrors(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)
	g := c.newGame("")

	tests := []struct {
		name   string
		id     string
		letter string
		code   int
		err    string
	}{
		{"two letters", g.GameID, "ab", http.StatusBadRequest, "invalid_input"},
		{"digit", g.GameID, "1", http.StatusBadRequest, "invalid_input"},
		{"empty", g.GameID, "", http.StatusBadRequest, "invalid_input"},
		{"unknown game", "missing", "a", http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, code := c.guess(tt.id, tt.letter)
			if code != tt.code || res.Error != tt.err {
				t.Fatalf("got %d %q, want %d %q", code, res.Error, tt.code, tt.err)
			}
		})
	}

	var res gameResp
	if code := c.do("POST", "/game/new", map[string]string{"category": "nope"}, &res); code != http.StatusBadRequest || res.Error != "unknown_category" {
		t.Fatalf("unknown category: %d %q", code, res.Error)
	}

	stranger := env.client(t)
	if _, code := stranger.guess(g.GameID, "a"); code != http.StatusNotFound {
		t.Fatalf("stranger guess: %d", code)
	}
	if code := stranger.do("GET", "/game/"+g.GameID, nil, &res); code != http.StatusNotFound {
		t.Fatalf("stranger get: %d", code)
	}
	res = gameResp{}
	if code := c.do("GET", "/game/"+g.GameID, nil, &res); code != http.StatusOK || res.WrongCount != 0 {
		t.Fatal("rejected guesses changed the round")
	}
}

func TestGetGameText(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)
	g := c.newGame("")
	c.guess(g.GameID, "x")

	res, err := c.hc.Get(env.ts.URL + "/game/" + g.GameID + "?format=text")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(res.Body)
	body := string(b)
	if !strings.HasPrefix(res.Header.Get("Content-Type"), "text/plain") {
		t.Fatalf("content type %q", res.Header.Get("Content-Type"))
	}
	for _, want := range []string{"_ _ _", "Attempts: 5", "Wrong: x", "Guess the word!"} {
		if !strings.Contains(body, want) {
			t.Fatalf("board missing %q:\n%s", want, body)
		}
	}
}

func TestResetAndHistory(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)

	var me map[string]any
	if code := c.do("POST", "/auth/signup", map[string]string{"username": "kai", "password": "password123"}, &me); code != http.StatusOK {
		t.Fatalf("signup: %d %v", code, me)
	}

	g := c.newGame("")
	c.guess(g.GameID, "x")
	var r gameResp
	if code := c.do("POST", "/game/"+g.GameID+"/reset", nil, &r); code != http.StatusOK {
		t.Fatalf("reset: %d %q", code, r.Error)
	}
	if r.GameID != g.GameID || r.WrongCount != 0 || len(r.Guessed) != 0 || strings.Join(r.Reveal, "") != "___" {
		t.Fatalf("reset did not start a fresh round: %+v", r)
	}

	var rows []db.GameRow
	if code := c.do("GET", "/games/mine", nil, &rows); code != http.StatusOK {
		t.Fatalf("games/mine: %d", code)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rounds in history, got %+v", rows)
	}
	for _, row := range rows {
		if row.ID == g.GameID {
			t.Fatal("history rows are keyed by round, not session")
		}
	}
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)

	// an anonymous win, claimed on signup
	g := c.newGame("")
	for _, l := range []string{"c", "a", "t"} {
		c.guess(g.GameID, l)
	}

	var res map[string]any
	if code := c.do("GET", "/auth/me", nil, &res); code != http.StatusUnauthorized {
		t.Fatalf("me before signup: %d", code)
	}
	if code := c.do("POST", "/auth/signup", map[string]string{"username": "ab", "password": "password123"}, &res); code != http.StatusBadRequest {
		t.Fatalf("short username: %d", code)
	}
	if code := c.do("POST", "/auth/signup", map[string]string{"username": "kai", "password": "password123"}, &res); code != http.StatusOK {
		t.Fatalf("signup: %d %v", code, res)
	}
	if code := c.do("POST", "/auth/signup", map[string]string{"username": "KAI", "password": "password123"}, &res); code != http.StatusConflict {
		t.Fatalf("duplicate signup: %d", code)
	}

	var who auth.AuthUser
	if code := c.do("GET", "/auth/me", nil, &who); code != http.StatusOK || who.Username != "kai" {
		t.Fatalf("me: %d %+v", code, who)
	}

	var rows []db.GameRow
	c.do("GET", "/games/mine", nil, &rows)
	if len(rows) != 1 || rows[0].Status != "won" {
		t.Fatalf("anonymous game not claimed: %+v", rows)
	}

	// a logged-in loss bumps stats
	g = c.newGame("shows")
	for _, l := range []string{"b", "c", "d", "e", "g", "h"} {
		c.guess(g.GameID, l)
	}
	var stats struct {
		GamesPlayed int `json:"gamesPlayed"`
		Wins        int `json:"wins"`
		Streak      int `json:"streak"`
	}
	if code := c.do("GET", "/stats/me", nil, &stats); code != http.StatusOK {
		t.Fatalf("stats: %d", code)
	}
	if stats.GamesPlayed != 1 || stats.Wins != 0 || stats.Streak != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	c.do("POST", "/auth/logout", nil, &res)
	if code := c.do("GET", "/auth/me", nil, &res); code != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d", code)
	}
	if code := c.do("POST", "/auth/login", map[string]string{"username": "kai", "password": "wrong-password"}, &res); code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", code)
	}
	if code := c.do("POST", "/auth/login", map[string]string{"username": "Kai", "password": "password123"}, &res); code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}
}

type dailyResp struct {
	Date   string    `json:"date"`
	Played bool      `json:"played"`
	Game   *gameResp `json:"game"`
}

func TestDailyFlow(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)

	var first, second dailyResp
	c.do("POST", "/daily/new", nil, &first)
	c.do("POST", "/daily/new", nil, &second)
	if first.Played || first.Game == nil || second.Game == nil || first.Game.GameID != second.Game.GameID {
		t.Fatalf("daily session not reused: %+v %+v", first, second)
	}
	if first.Date != daily.DateKey(time.Now()) {
		t.Fatalf("date = %q", first.Date)
	}
	id := first.Game.GameID

	if res, code := c.guess(id, "a"); code != http.StatusConflict || res.Error != "use_daily_guess" {
		t.Fatalf("daily via /game/guess: %d %q", code, res.Error)
	}
	var r gameResp
	if code := c.do("POST", "/game/"+id+"/reset", nil, &r); code != http.StatusConflict {
		t.Fatalf("daily reset: %d", code)
	}

	all := env.pool.Words()
	word := strings.ToLower(all[daily.WordIndex(time.Now(), env.salt, len(all))])
	var last gameResp
	seen := map[rune]bool{}
	for _, ch := range word {
		if ch < 'a' || ch > 'z' || seen[ch] {
			continue
		}
		seen[ch] = true
		var code int
		last = gameResp{}
		code = c.do("POST", "/daily/guess", map[string]string{"gameId": id, "letter": string(ch)}, &last)
		if code != http.StatusOK {
			t.Fatalf("daily guess %c: %d %q", ch, code, last.Error)
		}
	}
	if last.Status != game.StatusWon {
		t.Fatalf("daily not won: %+v", last)
	}

	var lb struct {
		Date string `json:"date"`
		Top  []struct {
			UserID     string `json:"userId"`
			WrongCount int    `json:"wrongCount"`
		} `json:"top"`
	}
	if code := c.do("GET", "/daily/leaderboard", nil, &lb); code != http.StatusOK || len(lb.Top) != 1 || lb.Top[0].WrongCount != 0 {
		t.Fatalf("leaderboard: %d %+v", code, lb)
	}

	var again dailyResp
	c.do("POST", "/daily/new", nil, &again)
	if !again.Played || again.Game != nil {
		t.Fatalf("second daily allowed: %+v", again)
	}

	var bad map[string]string
	if code := c.do("GET", "/daily/leaderboard?date=yesterday", nil, &bad); code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", code)
	}
}

func (c *client) dailyGuess(id, letter string) (gameResp, int) {
	c.t.Helper()
	var g gameResp
	code := c.do("POST", "/daily/guess", map[string]string{"gameId": id, "letter": letter}, &g)
	return g, code
}

// dailyLetters returns the distinct letters of today's word, in order.
func (e *testEnv) dailyLetters() []string {
	all := e.pool.Words()
	word := strings.ToLower(all[daily.WordIndex(time.Now(), e.salt, len(all))])
	var out []string
	seen := map[rune]bool{}
	for _, ch := range word {
		if ch < 'a' || ch > 'z' || seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, string(ch))
	}
	return out
}

func TestDailySignupMidRound(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)

	var start dailyResp
	if code := c.do("POST", "/daily/new", nil, &start); code != http.StatusOK || start.Game == nil {
		t.Fatalf("daily new: %d %+v", code, start)
	}
	id := start.Game.GameID
	letters := env.dailyLetters()
	if res, code := c.dailyGuess(id, letters[0]); code != http.StatusOK || !res.WasCorrect {
		t.Fatalf("anonymous daily guess: %d %+v", code, res)
	}

	var me map[string]any
	if code := c.do("POST", "/auth/signup", map[string]string{"username": "mika", "password": "password123"}, &me); code != http.StatusOK {
		t.Fatalf("signup: %d %v", code, me)
	}

	var resumed dailyResp
	c.do("POST", "/daily/new", nil, &resumed)
	if resumed.Played || resumed.Game == nil || resumed.Game.GameID != id {
		t.Fatalf("signup started a second daily round: %+v", resumed)
	}
	if len(resumed.Game.Guessed) != 1 {
		t.Fatalf("resumed round lost its guesses: %+v", resumed.Game)
	}

	var last gameResp
	for _, l := range letters[1:] {
		var code int
		if last, code = c.dailyGuess(id, l); code != http.StatusOK {
			t.Fatalf("daily guess %s after signup: %d %q", l, code, last.Error)
		}
	}
	if last.Status != game.StatusWon {
		t.Fatalf("daily not won: %+v", last)
	}

	var again dailyResp
	c.do("POST", "/daily/new", nil, &again)
	if !again.Played || again.Game != nil {
		t.Fatalf("finished daily playable again: %+v", again)
	}
}

func TestDailyGuessErrors(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)

	g := c.newGame("")
	if res, code := c.dailyGuess(g.GameID, "a"); code != http.StatusConflict || res.Error != "not_daily" {
		t.Fatalf("ordinary game via /daily/guess: %d %q", code, res.Error)
	}
	if res, code := c.dailyGuess("missing", "a"); code != http.StatusNotFound || res.Error != "not_found" {
		t.Fatalf("unknown game: %d %q", code, res.Error)
	}

	var d dailyResp
	c.do("POST", "/daily/new", nil, &d)
	stranger := env.client(t)
	if _, code := stranger.dailyGuess(d.Game.GameID, "a"); code != http.StatusNotFound {
		t.Fatalf("stranger daily guess: %d", code)
	}
	if res, code := c.dailyGuess(d.Game.GameID, "ab"); code != http.StatusBadRequest || res.Error != "invalid_input" {
		t.Fatalf("bad letter: %d %q", code, res.Error)
	}
}

func TestSweepExpiresSessions(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)
	ctx := context.Background()

	done := c.newGame("")
	for _, l := range []string{"c", "a", "t"} {
		c.guess(done.GameID, l)
	}
	playing := c.newGame("")
	c.guess(playing.GameID, "x")

	if n := env.srv.sweep(ctx, time.Now()); n != 0 {
		t.Fatalf("fresh sessions swept: %d", n)
	}
	if n := env.srv.sweep(ctx, time.Now().Add(16*time.Minute)); n != 1 {
		t.Fatalf("want the finished session swept, got %d", n)
	}
	var res gameResp
	if code := c.do("GET", "/game/"+done.GameID, nil, &res); code != http.StatusNotFound {
		t.Fatalf("finished session still served: %d", code)
	}
	if code := c.do("GET", "/game/"+playing.GameID, nil, &res); code != http.StatusOK {
		t.Fatalf("playing session dropped early: %d", code)
	}

	if n := env.srv.sweep(ctx, time.Now().Add(3*time.Hour)); n != 1 || env.store.Len() != 0 {
		t.Fatalf("idle session kept: swept %d, left %d", n, env.store.Len())
	}

	if err := env.srv.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if err := env.srv.Shutdown(ctx); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
}

func TestSweepForgetsYesterdaysDaily(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)

	var first dailyResp
	c.do("POST", "/daily/new", nil, &first)
	env.srv.sweep(context.Background(), time.Now().Add(24*time.Hour))

	env.srv.daily.mu.Lock()
	left := len(env.srv.daily.today)
	env.srv.daily.mu.Unlock()
	if left != 0 {
		t.Fatalf("daily index kept %d entries past midnight", left)
	}
}

const animePool = `
categories:
  anime: [naruto]
prompts:
  anime: Guess the anime title!
`

func TestCategoryPrompt(t *testing.T) {
	env := newTestEnvWith(t, 0, animePool)
	c := env.client(t)

	g := c.newGame("")
	if g.Message != "Guess the anime title!" {
		t.Fatalf("message = %q", g.Message)
	}
	res, _ := c.guess(g.GameID, "a")
	if res.Message != "Guess the anime title!" {
		t.Fatalf("guess message = %q", res.Message)
	}

	resp, err := c.hc.Get(env.ts.URL + "/game/" + g.GameID + "?format=text")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "Guess the anime title!") {
		t.Fatalf("board without prompt:\n%s", b)
	}
}

type wsMsg struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialGame(t *testing.T, c *client, id string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u, _ := url.Parse(c.env.ts.URL)
	h := http.Header{}
	for _, ck := range c.hc.Jar.Cookies(u) {
		h.Add("Cookie", ck.String())
	}
	wsURL := "ws" + strings.TrimPrefix(c.env.ts.URL, "http") + "/game/" + id + "/ws"
	return websocket.DefaultDialer.Dial(wsURL, h)
}

func readMsg(t *testing.T, conn *websocket.Conn, out any) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var m wsMsg
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatal(err)
	}
	if out != nil {
		if err := json.Unmarshal(m.Payload, out); err != nil {
			t.Fatal(err)
		}
	}
	return m.Type
}

func TestWebSocket(t *testing.T) {
	env := newTestEnv(t, 0)
	c := env.client(t)
	g := c.newGame("")

	conn, _, err := dialGame(t, c, g.GameID)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var st gameResp
	if typ := readMsg(t, conn, &st); typ != "state" || st.GameID != g.GameID {
		t.Fatalf("initial message %q %+v", typ, st)
	}

	if err := conn.WriteJSON(map[string]string{"type": "guess", "letter": "c"}); err != nil {
		t.Fatal(err)
	}
	if typ := readMsg(t, conn, &st); typ != "state" || !st.WasCorrect || st.Reveal[0] != "c" {
		t.Fatalf("guess reply %q %+v", typ, st)
	}

	var e map[string]string
	_ = conn.WriteJSON(map[string]string{"type": "guess", "letter": "7"})
	if typ := readMsg(t, conn, &e); typ != "error" || e["error"] != "invalid_input" {
		t.Fatalf("invalid guess reply %q %v", typ, e)
	}
	_ = conn.WriteJSON(map[string]string{"type": "dance"})
	if typ := readMsg(t, conn, &e); typ != "error" || e["error"] != "unknown_type" {
		t.Fatalf("unknown type reply %q %v", typ, e)
	}

	_ = conn.WriteJSON(map[string]string{"type": "reset"})
	if typ := readMsg(t, conn, &st); typ != "state" || strings.Join(st.Reveal, "") != "___" || len(st.Guessed) != 0 {
		t.Fatalf("reset reply %q %+v", typ, st)
	}

	// REST and socket share the session
	if _, code := c.guess(g.GameID, "a"); code != http.StatusOK {
		t.Fatal(code)
	}
	_ = conn.WriteJSON(map[string]string{"type": "state"})
	readMsg(t, conn, &st)
	if len(st.Guessed) != 1 || st.Guessed[0] != "a" {
		t.Fatalf("state after REST guess %+v", st)
	}

	stranger := env.client(t)
	_, resp, err := dialGame(t, stranger, g.GameID)
	if err == nil {
		t.Fatal("stranger connected to someone else's game")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("stranger handshake: %v", resp)
	}
}
