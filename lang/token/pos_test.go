package token

import "testing"

func TestMakePosLineCol(t *testing.T) {
	p := MakePos(12, 34)
	line, col := p.LineCol()
	if line != 12 || col != 34 {
		t.Errorf("LineCol() = (%d, %d), want (12, 34)", line, col)
	}
	if p.Unknown() {
		t.Errorf("(%d,%d) reported as Unknown", line, col)
	}
}

func TestPosUnknown(t *testing.T) {
	var p Pos
	if !p.Unknown() {
		t.Errorf("zero Pos should be Unknown")
	}
}
