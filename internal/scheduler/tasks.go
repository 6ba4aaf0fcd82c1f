package scheduler

import (
	"encoding/json"
	"fmt"

	"location_saver_backend/internal/session"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskPersistAddress = "addresses.persist"

type PersistAddressPayload struct {
	UserID  string               `json:"userId"`
	Address session.SavedAddress `json:"address"`
}

func NewPersistAddressTask(payload PersistAddressPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPersistAddress, data), nil
}

func ParsePersistAddressPayload(task *asynq.Task) (PersistAddressPayload, error) {
	var payload PersistAddressPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PersistAddressPayload{}, err
	}
	return payload, nil
}

func (p PersistAddressPayload) userID() (uuid.UUID, error) {
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse user id: %w", err)
	}
	return id, nil
}
