package crm

import (
	"database/sql"
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

// dateStore is the format interaction and last-contact dates are stored
// in. It sorts lexicographically, so MAX() over it is chronological.
const dateStore = "2006-01-02 15:04:05"

// Ingest converts envelopes into contact/interaction rows. Noisy and
// owner addresses are never stored; malformed records are skipped and
// counted. Re-running over the same envelopes is idempotent.
func (e *Engine) Ingest(envelopes []Envelope) (IngestStats, error) {
	var stats IngestStats

	// Schema missing or database unavailable is fatal: callers must be
	// able to tell "no data" from "no database".
	var probe int
	if err := e.db.QueryRow("SELECT COUNT(*) FROM contacts").Scan(&probe); err != nil {
		return stats, fmt.Errorf("contacts table unavailable: %w", err)
	}

	for _, env := range envelopes {
		addr, name, direction, ok := e.counterpart(env)
		if !ok {
			stats.Skipped++
			continue
		}

		when, parsed := parseWhen(env.Date)
		if !parsed {
			stats.Skipped++
			continue
		}
		date := when.UTC().Format(dateStore)

		contactID, created, err := e.upsertContact(addr, name, date, env.Source)
		if err != nil {
			stats.Skipped++
			continue
		}
		if created {
			stats.Added++
		} else {
			stats.Updated++
		}

		logged, err := e.logInteraction(contactID, direction, env.Subject, date, env.Source)
		if err != nil {
			// The contact row landed but the interaction didn't; count
			// the record once, as skipped.
			if created {
				stats.Added--
			} else {
				stats.Updated--
			}
			stats.Skipped++
			continue
		}
		if logged {
			stats.Logged++
		}
	}

	return stats, nil
}

// counterpart picks the contact side of an envelope. Mail the owner sent
// is recorded against the recipient as outbound; everything else is
// recorded against the sender as inbound.
func (e *Engine) counterpart(env Envelope) (addr, name, direction string, ok bool) {
	from := normalizeAddr(env.From.Addr)
	to := normalizeAddr(env.To.Addr)

	if from != "" && e.owner[from] {
		if to == "" || e.owner[to] || e.IsNoise(to) {
			return "", "", "", false
		}
		return to, strings.TrimSpace(env.To.Name), "outbound", true
	}

	if from == "" || e.IsNoise(from) {
		return "", "", "", false
	}
	return from, strings.TrimSpace(env.From.Name), "inbound", true
}

// IsNoise reports whether an address matches the noise denylist
// (newsletters, automated senders, bulk-mail domains).
func (e *Engine) IsNoise(addr string) bool {
	addr = strings.ToLower(addr)
	for _, kw := range e.rules.NoiseKeywords {
		if strings.Contains(addr, kw) {
			return true
		}
	}
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		domain := addr[at+1:]
		for _, d := range e.rules.NoiseDomains {
			if domain == d || strings.HasSuffix(domain, "."+d) {
				return true
			}
		}
	}
	return false
}

func (e *Engine) upsertContact(addr, observedName, date, source string) (int64, bool, error) {
	domain := domainOf(addr)
	if source == "" {
		source = "mailbox"
	}
	if observedName == "" {
		observedName = nameFromAddr(addr)
	}

	var (
		id         int64
		storedName sql.NullString
		storedLast sql.NullString
	)
	err := e.db.QueryRow(
		"SELECT id, name, last_contact_date FROM contacts WHERE email = ?", addr,
	).Scan(&id, &storedName, &storedLast)

	if err == sql.ErrNoRows {
		role := e.inferRole(addr, observedName)
		company := e.inferCompany(domain)
		res, err := e.db.Exec(`
			INSERT INTO contacts (email, name, company, role, domain, source, last_contact_date, is_noisy)
			VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		`, addr, observedName, company, role, domain, source, date)
		if err != nil {
			return 0, false, fmt.Errorf("insert contact %s: %w", addr, err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("contact id for %s: %w", addr, err)
		}
		return newID, true, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup contact %s: %w", addr, err)
	}

	name := pickName(storedName.String, observedName)
	last := date
	if storedLast.Valid && storedLast.String > last {
		last = storedLast.String
	}
	role := e.inferRole(addr, name)
	company := e.inferCompany(domain)

	_, err = e.db.Exec(`
		UPDATE contacts
		SET name = ?, company = ?, role = ?, domain = ?, source = ?,
		    last_contact_date = ?, updated_at = datetime('now')
		WHERE id = ?
	`, name, company, role, domain, source, last, id)
	if err != nil {
		return 0, false, fmt.Errorf("update contact %s: %w", addr, err)
	}
	return id, false, nil
}

// logInteraction inserts one interaction unless the (contact, subject,
// date) triple was already logged by an earlier scan.
func (e *Engine) logInteraction(contactID int64, direction, subject, date, source string) (bool, error) {
	subject = strings.TrimSpace(subject)

	var exists int
	err := e.db.QueryRow(`
		SELECT COUNT(*) FROM interactions
		WHERE contact_id = ? AND subject = ? AND date = ?
	`, contactID, subject, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check interaction: %w", err)
	}
	if exists > 0 {
		return false, nil
	}

	_, err = e.db.Exec(`
		INSERT INTO interactions (contact_id, type, direction, subject, date, source)
		VALUES (?, 'email', ?, ?, ?, ?)
		ON CONFLICT(contact_id, subject, date) DO NOTHING
	`, contactID, direction, subject, date, source)
	if err != nil {
		return false, fmt.Errorf("insert interaction: %w", err)
	}
	return true, nil
}

// inferRole tags a contact from the combined email + name text. First
// match wins: recruiter, then executive, then manager.
func (e *Engine) inferRole(addr, name string) string {
	text := strings.ToLower(addr + " " + name)
	for _, kw := range e.rules.RecruiterWords {
		if strings.Contains(text, kw) {
			return "recruiter"
		}
	}
	for _, kw := range e.rules.ExecutiveWords {
		if strings.Contains(text, kw) {
			return "executive"
		}
	}
	for _, kw := range e.rules.ManagerWords {
		if strings.Contains(text, kw) {
			return "manager"
		}
	}
	return "contact"
}

// inferCompany derives a company name from the email domain. Personal
// providers yield no company.
func (e *Engine) inferCompany(domain string) string {
	if domain == "" {
		return ""
	}
	for _, p := range e.rules.PublicProviders {
		if domain == p {
			return ""
		}
	}
	label := domain
	if i := strings.Index(label, "."); i > 0 {
		label = label[:i]
	}
	label = strings.ReplaceAll(label, "-", "")
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// pickName keeps the longest distinct observed name; ties go to the
// lexicographically smaller so the result is order-independent.
func pickName(stored, observed string) string {
	candidates := []string{}
	for _, part := range strings.Split(stored, ", ") {
		if part = strings.TrimSpace(part); part != "" {
			candidates = append(candidates, part)
		}
	}
	if observed = strings.TrimSpace(observed); observed != "" {
		candidates = append(candidates, observed)
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) > len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0]
}

// normalizeAddr extracts the bare lowercased address. Composite forms
// ("Name <addr@host>") sometimes leak into envelope addr fields; those
// go through net/mail.
func normalizeAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if parsed, err := mail.ParseAddress(addr); err == nil {
		return strings.ToLower(parsed.Address)
	}
	addr = strings.ToLower(addr)
	if !strings.Contains(addr, "@") {
		return ""
	}
	return addr
}

func domainOf(addr string) string {
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		return addr[at+1:]
	}
	return ""
}

// nameFromAddr derives a display name from the local part when the
// envelope carried none.
func nameFromAddr(addr string) string {
	local := addr
	if at := strings.Index(local, "@"); at >= 0 {
		local = local[:at]
	}
	var b strings.Builder
	upper := true
	for _, r := range local {
		switch {
		case r >= '0' && r <= '9':
			continue
		case r == '.' || r == '_' || r == '-':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
			upper = true
		default:
			if upper && r >= 'a' && r <= 'z' {
				r = r - 'a' + 'A'
			}
			b.WriteRune(r)
			upper = false
		}
	}
	return strings.TrimSpace(b.String())
}
