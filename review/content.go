package review

// Kind names the variant of a collected content item.
type Kind string

const (
	KindText      Kind = "text"
	KindPhoto     Kind = "photo"
	KindVideo     Kind = "video"
	KindVideoNote Kind = "video_note"
)

// Item is one collected piece of a review. It carries exactly what is needed
// to replay the content to an administrator, detached from the inbound
// transport message. The set of implementations is closed.
type Item interface {
	Kind() Kind
	isItem()
}

// Text is a plain text message.
type Text struct {
	Body string
}

// Photo references the highest-resolution size of an uploaded photo.
type Photo struct {
	FileID  string
	Caption string
}

// Video references an uploaded video file.
type Video struct {
	FileID  string
	Caption string
}

// VideoNote references a round video message. Telegram does not support
// captions for this type.
type VideoNote struct {
	FileID string
}

func (Text) Kind() Kind      { return KindText }
func (Photo) Kind() Kind     { return KindPhoto }
func (Video) Kind() Kind     { return KindVideo }
func (VideoNote) Kind() Kind { return KindVideoNote }

func (Text) isItem()      {}
func (Photo) isItem()     {}
func (Video) isItem()     {}
func (VideoNote) isItem() {}

// KindCounts summarizes a batch for logs, e.g. {"text": 2, "photo": 1}.
func KindCounts(items []Item) map[Kind]int {
	counts := make(map[Kind]int, 4)
	for _, it := range items {
		if it == nil {
			continue
		}
		counts[it.Kind()]++
	}
	return counts
}
