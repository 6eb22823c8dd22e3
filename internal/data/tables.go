package data

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// CharaCard is one playable character card.
type CharaCard struct {
	ID      int64  `json:"id"`
	CharaID int64  `json:"chara_id"`
	Name    string `json:"name"`
}

// SupportCard is one support card with its aggregated max stats.
type SupportCard struct {
	ID     int64            `json:"id"`
	Name   string           `json:"name"`
	Rarity int64            `json:"rarity"`
	Type   int64            `json:"type"`
	TS     int64            `json:"ts"`
	Stats  map[string]int64 `json:"stats"`
}

// IDName is a bare id/name pair.
type IDName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Factor is one inheritance factor.
type Factor struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      int64  `json:"rarity"`
	Grade       int64  `json:"grade"`
	Type        int64  `json:"type"`
}

// Skill is one skill with its trigger conditions.
type Skill struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      int64  `json:"rarity"`
	Category    int64  `json:"category"`
	Condition1  string `json:"condition_1"`
	Condition2  string `json:"condition_2"`
	IconID      int64  `json:"icon_id"`
}

// charaCards lists character cards from the name table. Card IDs in
// category 4 start with 1; the character ID is the first four digits.
func charaCards(master *sql.DB) ([]Table, error) {
	rows, err := master.Query(`
		SELECT n."index", n.text
		FROM text_data n
		WHERE n.category = 4
		  AND CAST(n."index" AS TEXT) LIKE '1%'
		ORDER BY n."index"
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chara cards: %w", err)
	}
	defer rows.Close()

	var cards []CharaCard

	for rows.Next() {
		var card CharaCard
		if err := rows.Scan(&card.ID, &card.Name); err != nil {
			return nil, fmt.Errorf("scanning chara card: %w", err)
		}

		card.CharaID = charaID(card.ID)
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return []Table{{Filename: "characard.json", Records: cards}}, nil
}

// charaID is the leading four digits of a card ID.
func charaID(cardID int64) int64 {
	s := strconv.FormatInt(cardID, 10)
	if len(s) <= 4 {
		return cardID
	}

	id, _ := strconv.ParseInt(s[:4], 10, 64)

	return id
}

func supportCards(master *sql.DB) ([]Table, error) {
	cards, err := supportCardRows(master)
	if err != nil {
		return nil, err
	}

	statNames, err := statNameMap(master)
	if err != nil {
		return nil, err
	}

	stats, err := supportCardStats(master, statNames)
	if err != nil {
		return nil, err
	}

	for _, card := range cards {
		if s, ok := stats[card.ID]; ok {
			card.Stats = s
		}
	}

	return []Table{{Filename: "supportcard.json", Records: cards}}, nil
}

func supportCardRows(master *sql.DB) ([]*SupportCard, error) {
	rows, err := master.Query(`
		SELECT c.id, c.rarity, c.command_id, c.start_date, n.text
		FROM support_card_data c
		JOIN text_data n ON n."index" = c.id AND n.category = 75
		ORDER BY c.rarity DESC, c.start_date, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying support cards: %w", err)
	}
	defer rows.Close()

	var cards []*SupportCard

	for rows.Next() {
		card := &SupportCard{Stats: map[string]int64{}}
		if err := rows.Scan(&card.ID, &card.Rarity, &card.Type, &card.TS, &card.Name); err != nil {
			return nil, fmt.Errorf("scanning support card: %w", err)
		}

		cards = append(cards, card)
	}

	return cards, rows.Err()
}

// statNameMap loads the stat type display names (category 151),
// normalized to snake_case JSON keys.
func statNameMap(master *sql.DB) (map[int64]string, error) {
	rows, err := master.Query(`SELECT "index", text FROM text_data WHERE category = 151`)
	if err != nil {
		return nil, fmt.Errorf("querying stat names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)

	for rows.Next() {
		var (
			index int64
			text  string
		)

		if err := rows.Scan(&index, &text); err != nil {
			return nil, fmt.Errorf("scanning stat name: %w", err)
		}

		names[index] = statKey(text)
	}

	return names, rows.Err()
}

// statKey normalizes a stat display name into a JSON key.
func statKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// supportCardStats aggregates each card's main effects at their
// highest limit-break level, plus its additive unique effects.
func supportCardStats(master *sql.DB, statNames map[int64]string) (map[int64]map[string]int64, error) {
	stats := make(map[int64]map[string]int64)

	add := func(cardID, statType, value int64) {
		if stats[cardID] == nil {
			stats[cardID] = make(map[string]int64)
		}

		name, ok := statNames[statType]
		if !ok {
			name = fmt.Sprintf("type_%d", statType)
		}

		stats[cardID][name] += value
	}

	rows, err := master.Query(`
		SELECT id, type,
		       MAX(
		           limit_lv5, limit_lv10, limit_lv15, limit_lv20, limit_lv25,
		           limit_lv30, limit_lv35, limit_lv40, limit_lv45, limit_lv50
		       ) AS max_value
		FROM support_card_effect_table
	`)
	if err != nil {
		return nil, fmt.Errorf("querying card effects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cardID, statType, maxValue int64
		if err := rows.Scan(&cardID, &statType, &maxValue); err != nil {
			return nil, fmt.Errorf("scanning card effect: %w", err)
		}

		add(cardID, statType, maxValue)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	unique, err := master.Query(`
		SELECT id, type_0, value_0, type_1, value_1
		FROM support_card_unique_effect
	`)
	if err != nil {
		return nil, fmt.Errorf("querying unique effects: %w", err)
	}
	defer unique.Close()

	for unique.Next() {
		var (
			cardID int64
			pairs  [2]struct{ t, v sql.NullInt64 }
		)

		if err := unique.Scan(&cardID, &pairs[0].t, &pairs[0].v, &pairs[1].t, &pairs[1].v); err != nil {
			return nil, fmt.Errorf("scanning unique effect: %w", err)
		}

		for _, p := range pairs {
			if !p.t.Valid || !p.v.Valid || p.t.Int64 == -1 {
				continue
			}

			add(cardID, p.t.Int64, p.v.Int64)
		}
	}

	return stats, unique.Err()
}

func supportCardIDs(master *sql.DB) ([]Table, error) {
	rows, err := master.Query(`
		SELECT n."index", n.text
		FROM text_data n
		WHERE n.category = 75
		ORDER BY n."index"
	`)
	if err != nil {
		return nil, fmt.Errorf("querying support card names: %w", err)
	}
	defer rows.Close()

	var cards []IDName

	for rows.Next() {
		var card IDName
		if err := rows.Scan(&card.ID, &card.Name); err != nil {
			return nil, fmt.Errorf("scanning support card name: %w", err)
		}

		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return []Table{{Filename: "supportcardidonly.json", Records: cards}}, nil
}

func factors(master *sql.DB) ([]Table, error) {
	rows, err := master.Query(`
		SELECT f.factor_id, f.rarity, f.grade, f.factor_type, n.text, d.text
		FROM succession_factor f
		JOIN text_data n ON n."index" = f.factor_id AND n.category = 147
		JOIN text_data d ON d."index" = f.factor_id AND d.category = 172
	`)
	if err != nil {
		return nil, fmt.Errorf("querying factors: %w", err)
	}
	defer rows.Close()

	var out []Factor

	for rows.Next() {
		var f Factor
		if err := rows.Scan(&f.ID, &f.Rarity, &f.Grade, &f.Type, &f.Name, &f.Description); err != nil {
			return nil, fmt.Errorf("scanning factor: %w", err)
		}

		out = append(out, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return []Table{{Filename: "factor.json", Records: out}}, nil
}

func skills(master *sql.DB) ([]Table, error) {
	rows, err := master.Query(`
		SELECT s.id, s.rarity, s.skill_category, s.condition_1, s.condition_2, s.icon_id, n.text, d.text
		FROM skill_data s
		JOIN text_data n ON n."index" = s.id AND n.category = 47
		JOIN text_data d ON d."index" = s.id AND d.category = 48
	`)
	if err != nil {
		return nil, fmt.Errorf("querying skills: %w", err)
	}
	defer rows.Close()

	var out []Skill

	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.Rarity, &s.Category, &s.Condition1, &s.Condition2, &s.IconID, &s.Name, &s.Description); err != nil {
			return nil, fmt.Errorf("scanning skill: %w", err)
		}

		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return []Table{{Filename: "skill.json", Records: out}}, nil
}
