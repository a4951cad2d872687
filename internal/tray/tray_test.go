package tray

import "testing"

func TestTray_State(t *testing.T) {
	tr := New(false, "MOTHER EARTH")

	if tr.RotationFollow() {
		t.Error("RotationFollow() should start false")
	}
	if tr.Shape() != "MOTHER EARTH" {
		t.Errorf("Shape() = %q", tr.Shape())
	}

	var got []bool
	tr.OnRotationToggle(func(follow bool) { got = append(got, follow) })

	tr.SetRotationFollow(true, true)
	tr.SetRotationFollow(false, false)

	if len(got) != 1 || !got[0] {
		t.Errorf("toggle callbacks = %v, want [true]", got)
	}
	if tr.RotationFollow() {
		t.Error("RotationFollow() should be false after the silent update")
	}

	tr.SetShape("SACRED HEART")
	if tr.Shape() != "SACRED HEART" {
		t.Errorf("Shape() = %q", tr.Shape())
	}
}

func TestLabels(t *testing.T) {
	if followLabel(true) == followLabel(false) {
		t.Error("follow labels should differ by state")
	}
	if shapeLabel("") != "Shape: none" || shapeLabel("HANUMAN") != "Shape: HANUMAN" {
		t.Error("unexpected shape labels")
	}
}
