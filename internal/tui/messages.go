package tui

import "github.com/Veraticus/hts-classify/internal/model"

type responseMsg struct {
	resp model.Response
}

type clearedMsg struct {
	err error
}

type errorMsg struct {
	err error
}
