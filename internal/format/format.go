// Package format renders domain data into WhatsApp-ready Spanish text.
// Rendering is pure: no I/O, and malformed input degrades to best-effort
// fallback strings instead of failing the turn.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/Falequi/ChatBotsGestionPartidos/internal/gestion"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/msgcat"
)

const (
	dateLayout  = "2006-01-02"
	paidMarker  = " ✅"
	menuDivider = "\n\n"
)

var (
	weekdayNames = [...]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}
	monthNames   = [...]string{"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio", "Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"}
)

// Hard fallbacks used when a catalog template is missing or fails to render.
const (
	fallbackWelcome          = "👋 ¡Hola! Para continuar, envíame tu número de documento."
	fallbackNotFound         = "❌ No encontré ningún jugador con ese documento. Envía cualquier mensaje para intentarlo de nuevo."
	fallbackPhoneMismatch    = "⚠️ Tu número de WhatsApp no coincide con el registrado. Envía cualquier mensaje para intentarlo de nuevo."
	fallbackGreeting         = "✅ ¡Hola!"
	fallbackMatchesHeader    = "📅 Próximos partidos. Responde con el número del partido:"
	fallbackMatchesEmpty     = "😕 Por ahora no hay partidos programados."
	fallbackInvalidSelection = "⚠️ Número inválido. Responde con un número de la lista."
	fallbackMenu             = "¿Qué deseas hacer?\n1. Convocarme al partido\n2. Retirarme del partido\n3. Ver convocados\n4. Salir"
	fallbackUnknownOption    = "🤔 No entendí esa opción."
	fallbackAdded            = "✅ ¡Listo! Quedaste convocado al partido."
	fallbackAlready          = "ℹ️ Ya estabas convocado a este partido."
	fallbackRemoved          = "✅ Te retiré del partido."
	fallbackNotRegistered    = "ℹ️ No estabas convocado a este partido."
	fallbackExit             = "👋 Has salido. Envía cualquier mensaje cuando quieras volver a empezar."
	fallbackRosterEmpty      = "Aún no hay convocados para este partido."
	fallbackPayment          = "💰 Recuerda pagar tu parte de la cancha antes del partido."
	fallbackUnavailable      = "🛠️ Estamos presentando problemas técnicos. Intenta de nuevo en unos minutos."
	fallbackGeneric          = "😓 Lo siento, algo salió mal. Intenta de nuevo."
)

// Formatter renders replies using the message catalog.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

func (f *Formatter) render(key string, data any, fallback string) string {
	if f == nil || f.cat == nil {
		return fallback
	}
	out, err := f.cat.Render(key, data)
	if err != nil {
		return fallback
	}
	return out
}

func (f *Formatter) Welcome() string {
	return f.render("auth.welcome", nil, fallbackWelcome)
}

func (f *Formatter) DocumentNotFound() string {
	return f.render("auth.not_found", nil, fallbackNotFound)
}

func (f *Formatter) PhoneMismatch() string {
	return f.render("auth.phone_mismatch", nil, fallbackPhoneMismatch)
}

// MatchList renders the greeting plus the 1-based numbered match list. The
// displayed order is the order the matches were captured in; selection indexes
// resolve against that same order.
func (f *Formatter) MatchList(playerName string, matches []gestion.MatchSummary) string {
	var sb strings.Builder
	sb.WriteString(f.render("auth.greeting", map[string]string{"Name": playerName}, fallbackGreeting))
	sb.WriteString("\n")
	if len(matches) == 0 {
		sb.WriteString(f.render("matches.empty", nil, fallbackMatchesEmpty))
		return sb.String()
	}
	sb.WriteString(f.render("matches.header", nil, fallbackMatchesHeader))
	for i, m := range matches {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, f.matchLine(m)))
	}
	return sb.String()
}

func (f *Formatter) matchLine(m gestion.MatchSummary) string {
	line := FormatDate(m.Date)
	if strings.TrimSpace(m.Time) != "" {
		line += " " + strings.TrimSpace(m.Time)
	}
	if strings.TrimSpace(m.Venue) != "" {
		line += " — " + strings.TrimSpace(m.Venue)
	}
	return line
}

func (f *Formatter) InvalidSelection() string {
	return f.render("matches.invalid_selection", nil, fallbackInvalidSelection)
}

func (f *Formatter) MatchGone() string {
	return f.render("matches.gone", nil, "⚠️ Ese partido ya no está disponible.")
}

func (f *Formatter) Menu() string {
	return f.render("menu.body", nil, fallbackMenu)
}

func (f *Formatter) withMenu(msg string) string {
	return msg + menuDivider + f.Menu()
}

func (f *Formatter) Added() string {
	return f.withMenu(f.render("actions.added", nil, fallbackAdded))
}

func (f *Formatter) AlreadyRegistered() string {
	return f.withMenu(f.render("actions.already_registered", nil, fallbackAlready))
}

func (f *Formatter) Removed() string {
	return f.withMenu(f.render("actions.removed", nil, fallbackRemoved))
}

func (f *Formatter) NotRegistered() string {
	return f.withMenu(f.render("actions.not_registered", nil, fallbackNotRegistered))
}

func (f *Formatter) UnknownOption() string {
	return f.withMenu(f.render("menu.unknown_option", nil, fallbackUnknownOption))
}

func (f *Formatter) Exited() string {
	return f.render("actions.exit", nil, fallbackExit)
}

func (f *Formatter) Unavailable() string {
	return f.render("errors.unavailable", nil, fallbackUnavailable)
}

func (f *Formatter) Generic() string {
	return f.render("errors.generic", nil, fallbackGeneric)
}

// Roster renders the convened-player list with a payment marker per paid
// player, payment instructions, and the menu again.
func (f *Formatter) Roster(r *gestion.Roster) string {
	var sb strings.Builder
	title := f.render("roster.title", map[string]string{
		"Fecha": FormatDate(r.Date),
		"Hora":  r.Time,
		"Lugar": r.Venue,
	}, "📋 Convocados — "+FormatDate(r.Date))
	sb.WriteString(title)
	if len(r.Players) == 0 {
		sb.WriteString("\n")
		sb.WriteString(f.render("roster.empty", nil, fallbackRosterEmpty))
	}
	for i, p := range r.Players {
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, p.Name))
		if p.Paid {
			sb.WriteString(paidMarker)
		}
	}
	sb.WriteString("\n\n")
	sb.WriteString(f.render("roster.payment", nil, fallbackPayment))
	return f.withMenu(sb.String())
}

// FormatDate renders a YYYY-MM-DD date as "<Weekday> <day> de <Month>" using
// Spanish names. Unparseable input is returned as-is.
func FormatDate(s string) string {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%s %d de %s", weekdayNames[int(d.Weekday())], d.Day(), monthNames[int(d.Month())-1])
}
