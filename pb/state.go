package pb

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"stacker/tetris"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	emptyCell = '.'
	blockCell = '#'
)

var (
	ErrMalformedState   = errors.New("malformed state")
	ErrMalformedCommand = errors.New("malformed command")
)

// EncodeState turns a game status into a Struct:
//
//	{
//	  "stack":       ["..........", ..., "IIII.OO..."], // one string per row, top to bottom
//	  "tetromino":   {"shape": "T", "x": 4, "y": 0, "grid": [".#.", "###"]} | null,
//	  "score":       100,
//	  "lines_clear": 1,
//	  "game_over":   false
//	}
func EncodeState(t *tetris.Tetris) (*structpb.Struct, error) {
	stack := make([]any, tetris.Rows)
	for r, row := range t.Stack {
		var b strings.Builder
		for _, c := range row {
			if c == "" {
				b.WriteByte(emptyCell)
				continue
			}
			b.WriteString(string(c))
		}
		stack[r] = b.String()
	}

	var tm any
	if t.Tetromino != nil {
		grid := make([]any, len(t.Tetromino.Grid))
		for r, row := range t.Tetromino.Grid {
			b := make([]byte, len(row))
			for c, v := range row {
				b[c] = emptyCell
				if v {
					b[c] = blockCell
				}
			}
			grid[r] = string(b)
		}
		tm = map[string]any{
			"shape": string(t.Tetromino.Shape),
			"x":     t.Tetromino.X,
			"y":     t.Tetromino.Y,
			"grid":  grid,
		}
	}

	s, err := structpb.NewStruct(map[string]any{
		"stack":       stack,
		"tetromino":   tm,
		"score":       t.Score,
		"lines_clear": t.LinesClear,
		"game_over":   t.GameOver,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return s, nil
}

// DecodeState is the reverse of EncodeState.
func DecodeState(s *structpb.Struct) (*tetris.Tetris, error) {
	f := s.GetFields()
	rows := f["stack"].GetListValue().GetValues()
	if len(rows) != tetris.Rows {
		return nil, fmt.Errorf("%w: wanted %d stack rows, got %d", ErrMalformedState, tetris.Rows, len(rows))
	}

	shapes := tetris.Shapes()
	t := &tetris.Tetris{
		Score:      int(f["score"].GetNumberValue()),
		LinesClear: int(f["lines_clear"].GetNumberValue()),
		GameOver:   f["game_over"].GetBoolValue(),
	}
	for r, v := range rows {
		row := v.GetStringValue()
		if len(row) != tetris.Cols {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrMalformedState, r, len(row))
		}
		for c := range len(row) {
			if row[c] == emptyCell {
				continue
			}
			shape := tetris.Shape(row[c : c+1])
			if !slices.Contains(shapes, shape) {
				return nil, fmt.Errorf("%w: unknown shape %q at %d,%d", ErrMalformedState, shape, r, c)
			}
			t.Stack[r][c] = shape
		}
	}

	tv := f["tetromino"].GetStructValue()
	if tv == nil {
		return t, nil
	}
	tf := tv.GetFields()
	shape := tetris.Shape(tf["shape"].GetStringValue())
	if !slices.Contains(shapes, shape) {
		return nil, fmt.Errorf("%w: unknown tetromino shape %q", ErrMalformedState, shape)
	}
	gridRows := tf["grid"].GetListValue().GetValues()
	if len(gridRows) == 0 {
		return nil, fmt.Errorf("%w: empty tetromino grid", ErrMalformedState)
	}
	grid := make([][]bool, len(gridRows))
	for r, v := range gridRows {
		row := v.GetStringValue()
		if row == "" || len(row) != len(gridRows[0].GetStringValue()) {
			return nil, fmt.Errorf("%w: tetromino grid row %d isn't rectangular", ErrMalformedState, r)
		}
		grid[r] = make([]bool, len(row))
		for c := range len(row) {
			grid[r][c] = row[c] == blockCell
		}
	}
	t.Tetromino = &tetris.Tetromino{
		Grid:  grid,
		X:     int(tf["x"].GetNumberValue()),
		Y:     int(tf["y"].GetNumberValue()),
		Shape: shape,
	}
	return t, nil
}

// NewCommand builds the Command request applying a to the session id.
func NewCommand(id string, a tetris.Action) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"session_id": structpb.NewStringValue(id),
		"action":     structpb.NewStringValue(string(a)),
	}}
}

// ParseCommand returns the session id and action of a Command request.
func ParseCommand(s *structpb.Struct) (string, tetris.Action, error) {
	f := s.GetFields()
	id := f["session_id"].GetStringValue()
	if id == "" {
		return "", "", fmt.Errorf("%w: missing session_id", ErrMalformedCommand)
	}
	name := f["action"].GetStringValue()
	a, ok := tetris.ParseAction(name)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown action %q", ErrMalformedCommand, name)
	}
	return id, a, nil
}
