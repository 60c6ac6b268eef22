// Package ai is the admin assistant: Gemini with a read-only SQL tool.
package ai

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	toolName     = "run_readonly_sql"
	maxRows      = 200
	maxToolHops  = 5
	queryTimeout = 10 * time.Second
)

var ErrNotReadOnly = errors.New("security violation: only read-only statements are allowed")

// Answer is the assistant's reply to one question.
type Answer struct {
	Text       string `json:"response"`
	TokensUsed int    `json:"tokensUsed"`
}

// Assistant holds the Gemini client and the read-only database connection.
type Assistant struct {
	client *genai.Client
	db     *sql.DB
	model  string
	log    *slog.Logger
}

// NewAssistant initializes the Gemini client.
func NewAssistant(ctx context.Context, apiKey, model string, dbReadOnly *sql.DB, log *slog.Logger) (*Assistant, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Assistant{client: client, db: dbReadOnly, model: model, log: log.With("component", "assistant")}, nil
}

func (a *Assistant) Close() error {
	return a.client.Close()
}

// Ask answers an admin question, letting the model query the database
// through the read-only tool as many times as it needs (bounded).
func (a *Assistant) Ask(ctx context.Context, question string) (*Answer, error) {
	// 1. Model, tool and instructions
	model := a.client.GenerativeModel(a.model)
	model.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        toolName,
			Description: "Executes a READ-ONLY MySQL query (SELECT, SHOW, DESCRIBE, EXPLAIN or WITH) and returns rows as JSON.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "One MySQL read-only statement."},
				},
				Required: []string{"query"},
			},
		}},
	}}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(fmt.Sprintf(`
			You are the Antique Nepal back-office assistant. You help shop administrators.
			Access: MySQL database (%s).
			Schema: %s
			Rules: read-only statements only, one per call. Money is in NPR. Be concise.
		`, toolName, schemaDefinition))},
	}

	// 2. Execute chat
	cs := model.StartChat()
	res, err := cs.SendMessage(ctx, genai.Text(question))
	if err != nil {
		return nil, fmt.Errorf("error sending message: %w", err)
	}
	answer := &Answer{TokensUsed: tokens(res)}

	// 3. Loop over function calls
	for hop := 0; ; hop++ {
		if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
			answer.Text = "No response."
			return answer, nil
		}

		call, text := splitParts(res.Candidates[0].Content.Parts)
		if call == nil {
			answer.Text = text
			return answer, nil
		}
		if call.Name != toolName {
			return nil, fmt.Errorf("unknown function: %s", call.Name)
		}
		if hop >= maxToolHops {
			answer.Text = "I could not answer that within the query limit. Please narrow the question."
			return answer, nil
		}

		query, _ := call.Args["query"].(string)
		a.log.InfoContext(ctx, "assistant running SQL", "query", query)

		result, err := a.runReadOnlyQuery(ctx, query)
		if err != nil {
			result = fmt.Sprintf("SQL Error: %v", err)
		}

		res, err = cs.SendMessage(ctx, genai.FunctionResponse{
			Name:     toolName,
			Response: map[string]any{"result": result},
		})
		if err != nil {
			return nil, fmt.Errorf("tool response error: %w", err)
		}
		if n := tokens(res); n > answer.TokensUsed {
			answer.TokensUsed = n
		}
	}
}

// splitParts returns the first function call, or the joined text parts.
func splitParts(parts []genai.Part) (*genai.FunctionCall, string) {
	var texts []string
	for _, p := range parts {
		switch v := p.(type) {
		case genai.FunctionCall:
			return &v, ""
		case genai.Text:
			texts = append(texts, string(v))
		}
	}
	return nil, strings.TrimSpace(strings.Join(texts, "\n"))
}

func tokens(res *genai.GenerateContentResponse) int {
	if res == nil || res.UsageMetadata == nil {
		return 0
	}
	return int(res.UsageMetadata.TotalTokenCount)
}

var (
	readOnlyStart = regexp.MustCompile(`(?i)^(SELECT|SHOW|DESCRIBE|DESC|EXPLAIN|WITH)\b`)
	writeKeyword  = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|REPLACE|DROP|ALTER|CREATE|TRUNCATE|RENAME|GRANT|REVOKE|LOCK|UNLOCK|CALL|SET|HANDLER|LOAD|OUTFILE|DUMPFILE|SLEEP|BENCHMARK)\b`)
)

// isReadOnlyQuery accepts a single statement that starts with a read-only
// keyword and contains no write keyword or comment.
func isReadOnlyQuery(query string) bool {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if q == "" {
		return false
	}
	if strings.Contains(q, ";") || strings.Contains(q, "--") || strings.Contains(q, "/*") || strings.Contains(q, "#") {
		return false
	}
	return readOnlyStart.MatchString(q) && !writeKeyword.MatchString(q)
}

// runReadOnlyQuery runs the statement inside a read-only transaction and
// returns at most maxRows rows as JSON.
func (a *Assistant) runReadOnlyQuery(ctx context.Context, query string) (string, error) {
	if !isReadOnlyQuery(query) {
		return "", ErrNotReadOnly
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := a.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	table, err := rowsToMaps(rows, maxRows)
	if err != nil {
		return "", err
	}
	jsonData, err := json.Marshal(table)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func rowsToMaps(rows *sql.Rows, limit int) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	table := []map[string]any{}
	for rows.Next() && len(table) < limit {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		entry := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				entry[col] = string(b)
			} else {
				entry[col] = values[i]
			}
		}
		table = append(table, entry)
	}
	return table, rows.Err()
}

const schemaDefinition = `
	- users (id, email, full_name, role [customer, admin], auth_provider [credentials, google], created_at)
	- addresses (id, user_id, full_name, phone, line1, line2, city, province, postal_code, country, is_default)
	- categories (id, name, slug, parent_id, position)
	- products (id, category_id, name, slug, description, price, origin, era, material, is_active, is_featured, created_at)
	- product_images (id, product_id, url, alt_text, position, is_primary)
	- product_variants (id, product_id, sku, name, color, size, price_override, stock)
	- carts (id, user_id), cart_items (id, cart_id, variant_id, quantity)
	- orders (id, order_number, user_id, status [pending, processing, shipped, delivered, cancelled], payment_method [cod, esewa, khalti], payment_status [unpaid, paid, refunded], subtotal, shipping_fee, tax, total, created_at)
	- order_items (id, order_id, variant_id, product_id, product_name, variant_name, sku, unit_price, quantity, line_total)
	- wishlist_items (id, user_id, product_id)
	- reviews (id, product_id, user_id, rating, title, body, created_at)
	- notifications (id, user_id, message, is_read)
	- site_settings (setting_key, setting_value)
`
