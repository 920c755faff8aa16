package service

// Push event names shared with the backend channel
const (
	EventArticleCreated = "articulo-nuevo"
	EventArticleDeleted = "articulo-eliminado"
)

// Publisher fans an event out to connected browsers
type Publisher interface {
	Publish(event string, data any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, any) {}

func publisherOrNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
