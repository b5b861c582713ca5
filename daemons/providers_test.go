// Copyright (C) 2025 skillgate-dev
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package daemons

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx/fxtest"

	"github.com/skillgate-dev/skillgate/database"
)

type closeTrackingBroker struct {
	closed bool
}

func (b *closeTrackingBroker) Publish(context.Context, database.Message) error { return nil }

func (b *closeTrackingBroker) Subscribe(database.Channel) (<-chan map[string]any, error) {
	return make(chan map[string]any), nil
}

func (b *closeTrackingBroker) Close() error {
	b.closed = true
	return nil
}

func TestBrokerIsClosedOnShutdown(t *testing.T) {
	broker := &closeTrackingBroker{}
	lc := fxtest.NewLifecycle(t)

	registerBrokerShutdown(lc, broker)

	lc.RequireStart()
	assert.False(t, broker.closed)
	lc.RequireStop()
	assert.True(t, broker.closed)
}
