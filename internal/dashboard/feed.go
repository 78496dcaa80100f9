package dashboard

import (
	"github.com/skalibog/signalfeed/pkg/models"
)

// Feed состояние ленты: множество уже показанных id и решение о перестроении.
// Не потокобезопасен, им владеет цикл событий контроллера.
type Feed struct {
	sink  Sink
	known map[models.SignalID]struct{}
}

// NewFeed создает пустую ленту
func NewFeed(sink Sink) *Feed {
	return &Feed{
		sink:  sink,
		known: make(map[models.SignalID]struct{}),
	}
}

// Update применяет список сигналов из очередного опроса.
// Возвращает id новых сигналов и признак перестроения ленты.
//
// Пустой список только показывает заглушку, ранее отрисованные карточки остаются.
// Лента перестраивается целиком и только если найден хотя бы один новый id.
func (f *Feed) Update(signals []models.Signal) ([]models.SignalID, bool) {
	if len(signals) == 0 {
		f.sink.ShowEmptyState(true)
		return nil, false
	}

	f.sink.ShowEmptyState(false)

	// Сначала определяем новые, потом добавляем в известные:
	// повторяющийся в одном ответе id отмечается новым во всех карточках
	fresh := make(map[models.SignalID]struct{})
	var newIDs []models.SignalID
	for _, signal := range signals {
		if _, seen := f.known[signal.ID]; seen {
			continue
		}
		if _, dup := fresh[signal.ID]; !dup {
			newIDs = append(newIDs, signal.ID)
		}
		fresh[signal.ID] = struct{}{}
	}

	for id := range fresh {
		f.known[id] = struct{}{}
	}

	if len(newIDs) == 0 {
		return nil, false
	}

	cards := make([]Card, len(signals))
	for i, signal := range signals {
		_, isNew := fresh[signal.ID]
		cards[i] = BuildCard(signal, isNew)
	}
	f.sink.ReplaceFeed(cards)

	return newIDs, true
}

// Clear очищает ленту и забывает все id
func (f *Feed) Clear() {
	f.sink.ClearFeed()
	f.sink.ShowEmptyState(true)
	clear(f.known)
}

// Known сообщает, встречался ли id
func (f *Feed) Known(id models.SignalID) bool {
	_, ok := f.known[id]
	return ok
}

// Len число известных id
func (f *Feed) Len() int {
	return len(f.known)
}
