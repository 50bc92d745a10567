package quality

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	shortTitlePenalty       = 20
	shortDescriptionPenalty = 15
	longTitlePenalty        = 10
	noVerbPenalty           = 15
	noQuantityPenalty       = 10
	pastDeadlinePenalty     = 30

	minTitle         = 10
	minDescription   = 20
	maxTitle         = 100
	statementValidAt = 70
)

// Statement is any free-text goal: an ambition, an objective or an action.
type Statement struct {
	Title       string
	Description string
	Deadline    *time.Time
}

type StatementResult struct {
	Confidence  int      `json:"confidence"`
	Valid       bool     `json:"valid"`
	Issues      []string `json:"issues"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// Infinitives and bare forms; inflections are folded by verbStems.
var actionVerbs = setOf(
	// English
	"achieve", "apply", "attend", "automate", "boost", "build", "close", "complete", "create",
	"cut", "decrease", "deliver", "design", "develop", "double", "earn", "establish", "expand",
	"finish", "finalize", "gain", "get", "grow", "hire", "implement", "improve", "increase",
	"invest", "launch", "learn", "lose", "lower", "make", "master", "meet", "migrate", "obtain",
	"optimize", "organize", "pass", "pay", "plan", "practice", "publish", "raise", "reach",
	"read", "reduce", "release", "run", "save", "sell", "ship", "start", "study", "train",
	"travel", "triple", "visit", "win", "write",
	// Portuguese
	"alcançar", "aprender", "atingir", "aumentar", "automatizar", "começar", "completar",
	"concluir", "conquistar", "conseguir", "construir", "contratar", "correr", "cortar", "criar",
	"crescer", "desenvolver", "diminuir", "dobrar", "dominar", "economizar", "entregar",
	"escrever", "estabelecer", "estudar", "fazer", "fechar", "finalizar", "ganhar",
	"implementar", "iniciar", "investir", "lançar", "ler", "melhorar", "obter", "organizar",
	"otimizar", "pagar", "participar", "passar", "perder", "planejar", "poupar", "praticar",
	"publicar", "quitar", "reduzir", "terminar", "treinar", "vender", "viajar", "visitar",
)

var magnitudeWords = setOf(
	"hundred", "thousand", "million", "billion", "dozen", "half", "twice",
	"cem", "cento", "centena", "mil", "milhão", "milhões", "bilhão", "bilhões", "dezena", "dúzia", "metade", "dobro",
)

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
}

// verbStems yields the word and its likely base forms (runs, running, reduced).
func verbStems(w string) []string {
	out := []string{w}
	for _, suf := range []string{"ing", "ed", "es", "s"} {
		if base, ok := strings.CutSuffix(w, suf); ok && len(base) >= 2 {
			out = append(out, base, base+"e")
			// running -> run
			if n := len(base); n >= 3 && base[n-1] == base[n-2] {
				out = append(out, base[:n-1])
			}
		}
	}
	return out
}

func hasActionVerb(title string) bool {
	for _, w := range words(title) {
		for _, stem := range verbStems(w) {
			if actionVerbs[stem] {
				return true
			}
		}
	}
	return false
}

func hasQuantity(title string) bool {
	for _, r := range title {
		if unicode.IsDigit(r) || r == '%' || unicode.Is(unicode.Sc, r) {
			return true
		}
	}
	for _, w := range words(title) {
		if magnitudeWords[w] {
			return true
		}
	}
	return false
}

// ScoreStatement starts at 100 and subtracts one penalty per problem found.
// It depends on now only for the past-deadline check.
func ScoreStatement(s Statement, now time.Time) StatementResult {
	title := strings.TrimSpace(s.Title)
	desc := strings.TrimSpace(s.Description)
	titleLen := utf8.RuneCountInString(title)

	r := StatementResult{Issues: []string{}, Warnings: []string{}, Suggestions: []string{}}
	confidence := 100

	if titleLen < minTitle {
		confidence -= shortTitlePenalty
		r.Issues = append(r.Issues, "title is too short")
		r.Suggestions = append(r.Suggestions, "Expand the title to at least 10 characters so it says what will change.")
	}
	if utf8.RuneCountInString(desc) < minDescription {
		confidence -= shortDescriptionPenalty
		r.Issues = append(r.Issues, "description is too short")
		r.Suggestions = append(r.Suggestions, "Add a description of at least 20 characters explaining how and why.")
	}
	if titleLen > maxTitle {
		confidence -= longTitlePenalty
		r.Warnings = append(r.Warnings, "title is longer than 100 characters")
		r.Suggestions = append(r.Suggestions, "Shorten the title and move details into the description.")
	}
	if !hasActionVerb(title) {
		confidence -= noVerbPenalty
		r.Issues = append(r.Issues, "title has no action verb")
		r.Suggestions = append(r.Suggestions, "Start the title with an action verb such as increase, finish or learn.")
	}
	if !hasQuantity(title) {
		confidence -= noQuantityPenalty
		r.Issues = append(r.Issues, "title has nothing measurable")
		r.Suggestions = append(r.Suggestions, "Put a number, percentage or amount in the title.")
	}
	if s.Deadline != nil && s.Deadline.Before(now) {
		confidence -= pastDeadlinePenalty
		r.Warnings = append(r.Warnings, "deadline is in the past")
		r.Suggestions = append(r.Suggestions, "Move the deadline to a future date.")
	}

	if confidence < 0 {
		confidence = 0
	}
	r.Confidence = confidence
	r.Valid = confidence >= statementValidAt
	return r
}
