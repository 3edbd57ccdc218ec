package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"nexterror/logger"
	"nexterror/types"

	"fortio.org/safecast"
	"github.com/neovim/go-client/nvim"
)

var errNoClient = errors.New("nvim client not set")

type Config struct {
	// SmoothScroll forces the settle delay after reveals. Users can also set
	// vim.g.nexterror_smooth_scroll from their Neovim config.
	SmoothScroll bool
}

// NvimEditor is the Neovim side of navigation. It implements navigate.Host,
// navigate.Presenter and diagnostics.Source.
type NvimEditor struct {
	client *nvim.Nvim // set via SetClient
	config Config
}

func New(config Config) *NvimEditor {
	return &NvimEditor{config: config}
}

// SetClient stores the nvim client for all editor operations
func (e *NvimEditor) SetClient(n *nvim.Nvim) {
	e.client = n
}

func (e *NvimEditor) Name() string { return "nvim" }

func (e *NvimEditor) ready(ctx context.Context) error {
	if e.client == nil {
		return errNoClient
	}
	return ctx.Err()
}

// ActiveDocument reads the current buffer name and window cursor in one round-trip.
// Unnamed and special buffers (help, quickfix, terminal) are not documents.
func (e *NvimEditor) ActiveDocument(ctx context.Context) (types.DocumentID, types.Position, bool, error) {
	defer logger.Trace("editor.ActiveDocument")()
	if err := e.ready(ctx); err != nil {
		return "", types.Position{}, false, err
	}

	batch := e.client.NewBatch()

	var name string
	var buftype string
	var cursor [2]int

	batch.BufferName(nvim.Buffer(0), &name) // 0 is the current buffer
	batch.ExecLua(`return vim.bo.buftype`, &buftype, nil)
	batch.WindowCursor(nvim.Window(0), &cursor)

	if err := batch.Execute(); err != nil {
		return "", types.Position{}, false, fmt.Errorf("read active buffer: %w", err)
	}

	if name == "" || buftype != "" {
		return "", types.Position{}, false, nil
	}

	// nvim cursor: 1-indexed row, 0-indexed byte column
	return documentID(name), types.Position{Line: cursor[0] - 1, Column: cursor[1]}, true, nil
}

// SetCursor moves the cursor, leaving the previous location on the jumplist.
// Neovim clamps the column to the last character in normal mode, so the
// cursor is read back in the same batch.
func (e *NvimEditor) SetCursor(ctx context.Context, pos types.Position) (types.Position, error) {
	if err := e.ready(ctx); err != nil {
		return types.Position{}, err
	}
	var cursor [2]int
	batch := e.client.NewBatch()
	// setpos avoids `normal! m'`, which would leave insert mode
	batch.ExecLua("vim.fn.setpos(\"''\", vim.fn.getpos('.'))", nil, nil)
	batch.SetWindowCursor(nvim.Window(0), [2]int{pos.Line + 1, pos.Column})
	batch.WindowCursor(nvim.Window(0), &cursor)
	if err := batch.Execute(); err != nil {
		return types.Position{}, err
	}
	return types.Position{Line: cursor[0] - 1, Column: cursor[1]}, nil
}

// VisibleRanges returns the lines shown in the current window
func (e *NvimEditor) VisibleRanges(ctx context.Context) ([]types.Range, error) {
	if err := e.ready(ctx); err != nil {
		return nil, err
	}

	var bounds [2]int
	batch := e.client.NewBatch()
	batch.ExecLua(`return {vim.fn.line("w0"), vim.fn.line("w$")}`, &bounds, nil)
	if err := batch.Execute(); err != nil {
		return nil, fmt.Errorf("read viewport: %w", err)
	}

	return []types.Range{{
		Start: types.Position{Line: bounds[0] - 1, Column: 0},
		End:   types.Position{Line: bounds[1] - 1, Column: math.MaxInt},
	}}, nil
}

// Reveal opens folds at the cursor and centers it
func (e *NvimEditor) Reveal(ctx context.Context, pos types.Position) error {
	if err := e.ready(ctx); err != nil {
		return err
	}
	batch := e.client.NewBatch()
	batch.SetWindowCursor(nvim.Window(0), [2]int{pos.Line + 1, pos.Column})
	batch.ExecLua("vim.cmd('normal! zvzz')", nil, nil)
	return batch.Execute()
}

const openDocumentLua = `
local target = ...
for _, bufnr in ipairs(vim.api.nvim_list_bufs()) do
	if vim.api.nvim_buf_get_name(bufnr) == target then
		vim.api.nvim_set_current_buf(bufnr)
		return
	end
end
vim.cmd.edit(vim.fn.fnameescape(target))
`

// OpenDocument focuses the buffer for doc, loading the file if no buffer has it
func (e *NvimEditor) OpenDocument(ctx context.Context, doc types.DocumentID) error {
	defer logger.Trace("editor.OpenDocument")()
	if err := e.ready(ctx); err != nil {
		return err
	}
	batch := e.client.NewBatch()
	batch.ExecLua(openDocumentLua, nil, string(doc))
	return batch.Execute()
}

func (e *NvimEditor) SmoothScroll(ctx context.Context) bool {
	if e.config.SmoothScroll {
		return true
	}
	if err := e.ready(ctx); err != nil {
		return false
	}

	var enabled bool
	batch := e.client.NewBatch()
	batch.ExecLua(`return vim.g.nexterror_smooth_scroll == true`, &enabled, nil)
	if err := batch.Execute(); err != nil {
		logger.Debug("error reading smooth scroll flag: %v", err)
		return false
	}
	return enabled
}

// DismissPopup closes the diagnostic float opened by ShowDetail, if still open
func (e *NvimEditor) DismissPopup(ctx context.Context) {
	e.executeLua(ctx, `
		local win = vim.g.nexterror_float
		if win and vim.api.nvim_win_is_valid(win) then
			vim.api.nvim_win_close(win, true)
		end
		vim.g.nexterror_float = nil
	`)
}

// ShowDetail opens a diagnostic float for the marker under the cursor
func (e *NvimEditor) ShowDetail(ctx context.Context) {
	e.executeLua(ctx, `
		local _, win = vim.diagnostic.open_float({ scope = "cursor", focus = false })
		vim.g.nexterror_float = win
	`)
}

// diagnosticsLua converts vim.diagnostic entries of one buffer into plain tables
const diagnosticsLua = `
local function collect(bufnr)
	local out = {}
	local name = vim.api.nvim_buf_get_name(bufnr)
	if name == "" then
		return out
	end
	for _, d in ipairs(vim.diagnostic.get(bufnr)) do
		table.insert(out, {
			name = name,
			lnum = d.lnum,
			col = d.col,
			severity = d.severity,
			message = d.message,
			source = d.source,
		})
	end
	return out
end
`

// Diagnostics returns the diagnostics Neovim holds for one document
func (e *NvimEditor) Diagnostics(ctx context.Context, doc types.DocumentID) ([]types.Diagnostic, error) {
	defer logger.Trace("editor.Diagnostics")()
	if err := e.ready(ctx); err != nil {
		return nil, err
	}

	var raw []map[string]any
	batch := e.client.NewBatch()
	batch.ExecLua(diagnosticsLua+`
		local target = ...
		for _, bufnr in ipairs(vim.api.nvim_list_bufs()) do
			if vim.api.nvim_buf_get_name(bufnr) == target then
				return collect(bufnr)
			end
		end
		return {}
	`, &raw, string(doc))
	if err := batch.Execute(); err != nil {
		return nil, fmt.Errorf("get diagnostics: %w", err)
	}

	return decodeDiagnostics(raw), nil
}

// AllDiagnostics returns the diagnostics of every buffer that has any
func (e *NvimEditor) AllDiagnostics(ctx context.Context) (map[types.DocumentID][]types.Diagnostic, error) {
	defer logger.Trace("editor.AllDiagnostics")()
	if err := e.ready(ctx); err != nil {
		return nil, err
	}

	var raw []map[string]any
	batch := e.client.NewBatch()
	batch.ExecLua(diagnosticsLua+`
		local buffers = {}
		for _, d in ipairs(vim.diagnostic.get()) do
			buffers[d.bufnr] = true
		end
		local out = {}
		for bufnr in pairs(buffers) do
			vim.list_extend(out, collect(bufnr))
		end
		return out
	`, &raw, nil)
	if err := batch.Execute(); err != nil {
		return nil, fmt.Errorf("get all diagnostics: %w", err)
	}

	all := make(map[types.DocumentID][]types.Diagnostic)
	for _, d := range decodeDiagnostics(raw) {
		all[d.Document] = append(all[d.Document], d)
	}
	return all, nil
}

// Internal helper methods

func (e *NvimEditor) executeLua(ctx context.Context, code string) {
	if err := e.ready(ctx); err != nil {
		return
	}
	batch := e.client.NewBatch()
	batch.ExecLua(code, nil, nil)
	if err := batch.Execute(); err != nil {
		logger.Error("error executing lua: %v", err)
	}
}

func documentID(name string) types.DocumentID {
	return types.DocumentID(filepath.Clean(name))
}

// decodeDiagnostics converts the tables returned by diagnosticsLua.
// Entries without a position are dropped.
func decodeDiagnostics(raw []map[string]any) []types.Diagnostic {
	diags := make([]types.Diagnostic, 0, len(raw))
	for _, entry := range raw {
		line, okLine := getNumber(entry, "lnum")
		col, okCol := getNumber(entry, "col")
		name := getString(entry, "name")
		if !okLine || !okCol || name == "" {
			continue
		}

		diags = append(diags, types.Diagnostic{
			Document: documentID(name),
			Position: types.Position{Line: line, Column: col},
			Severity: convertSeverity(entry),
			Message:  getString(entry, "message"),
			Source:   getString(entry, "source"),
		})
	}
	return diags
}

// convertSeverity maps vim.diagnostic.severity (same numbering as LSP).
// Missing or unknown severities are treated as errors.
func convertSeverity(entry map[string]any) types.Severity {
	n, ok := getNumber(entry, "severity")
	if !ok {
		return types.SeverityError
	}
	switch sev := types.Severity(n); sev {
	case types.SeverityError, types.SeverityWarning, types.SeverityInfo, types.SeverityHint:
		return sev
	default:
		return types.SeverityError
	}
}

// Helper function to safely get string from map
func getString(m map[string]any, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

// Helper function to safely get an int from map. msgpack hands numbers back
// as whichever integer width fits, or float64 from Lua floats.
func getNumber(m map[string]any, key string) (int, bool) {
	var (
		n   int
		err error
	)
	switch val := m[key].(type) {
	case int:
		return val, true
	case int8:
		n, err = safecast.Conv[int](val)
	case int16:
		n, err = safecast.Conv[int](val)
	case int32:
		n, err = safecast.Conv[int](val)
	case int64:
		n, err = safecast.Conv[int](val)
	case uint8:
		n, err = safecast.Conv[int](val)
	case uint16:
		n, err = safecast.Conv[int](val)
	case uint32:
		n, err = safecast.Conv[int](val)
	case uint64:
		n, err = safecast.Conv[int](val)
	case float64:
		n, err = safecast.Convert[int](val)
	default:
		return 0, false
	}
	return n, err == nil
}
