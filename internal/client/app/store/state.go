package store

import (
	"errors"

	"sharenotes/internal/client/domain/entities"
)

// State - снимок состояния хранилища заметок.
type State struct {
	Loading       bool            `json:"loading" yaml:"loading"`
	Updating      bool            `json:"updating" yaml:"updating"`
	UpdateSuccess bool            `json:"updateSuccess" yaml:"updateSuccess"`
	ErrorMessage  string          `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	ErrorStatus   int             `json:"errorStatus,omitempty" yaml:"errorStatus,omitempty"`
	Entities      []entities.Note `json:"entities" yaml:"entities"`
	Entity        entities.Note   `json:"entity" yaml:"entity"`
}

func initialState() State {
	return State{Entities: []entities.Note{}}
}

func (s State) clone() State {
	list := make([]entities.Note, len(s.Entities))
	for i, note := range s.Entities {
		list[i] = note.Clone()
	}
	s.Entities = list
	s.Entity = s.Entity.Clone()
	return s
}

type statusCoder interface {
	StatusCode() int
}

func (s *State) readPending() {
	s.ErrorMessage = ""
	s.ErrorStatus = 0
	s.UpdateSuccess = false
	s.Loading = true
}

func (s *State) mutationPending() {
	s.ErrorMessage = ""
	s.ErrorStatus = 0
	s.UpdateSuccess = false
	s.Updating = true
}

func (s *State) listFulfilled(notes []entities.Note) {
	s.Loading = false
	s.Entities = notes
}

func (s *State) entityFulfilled(note entities.Note) {
	s.Loading = false
	s.Entity = note
}

func (s *State) saveFulfilled(note entities.Note) {
	s.Updating = false
	s.Loading = false
	s.UpdateSuccess = true
	s.Entity = note
}

func (s *State) deleteFulfilled() {
	s.Updating = false
	s.UpdateSuccess = true
	s.Entity = entities.Note{}
}

func (s *State) rejected(err error) {
	s.Loading = false
	s.Updating = false
	s.UpdateSuccess = false
	s.ErrorMessage = err.Error()
	s.ErrorStatus = 0

	var sc statusCoder
	if errors.As(err, &sc) {
		s.ErrorStatus = sc.StatusCode()
	}
}
