package instagram

// FeedResponse is the feed API page contract
type FeedResponse struct {
	Items         []FeedItem `json:"items"`
	NextMaxID     string     `json:"next_max_id"`
	MoreAvailable bool       `json:"more_available"`
	Status        string     `json:"status"`
	Message       string     `json:"message"`
	User          *FeedUser  `json:"user"`
}

// FeedUser carries the account's numeric identifier, used to back-fill
// the profile record when the HTML alone did not expose it.
type FeedUser struct {
	PK NumericID `json:"pk"`
}

// FeedItem is one raw post from the feed API
type FeedItem struct {
	PK            NumericID      `json:"pk"`
	ID            string         `json:"id"`
	Code          string         `json:"code"`
	Caption       *Caption       `json:"caption"`
	LikeCount     int            `json:"like_count"`
	CommentCount  int            `json:"comment_count"`
	PlayCount     int64          `json:"play_count"`
	ViewCount     int64          `json:"view_count"`
	TakenAt       int64          `json:"taken_at"`
	MediaType     int            `json:"media_type"`
	ProductType   string         `json:"product_type"`
	VideoDuration float64        `json:"video_duration"`
	ImageVersions *ImageVersions `json:"image_versions2"`
	VideoVersions []VideoVersion `json:"video_versions"`
	CarouselMedia []FeedItem     `json:"carousel_media"`
	Location      *FeedLocation  `json:"location"`
	User          *ItemOwner     `json:"user"`
}

// Media type codes used by the feed API
const (
	MediaTypeImage    = 1
	MediaTypeVideo    = 2
	MediaTypeCarousel = 8
)

// ProductTypeClips marks a video item as a reel
const ProductTypeClips = "clips"

// Caption is the nested caption object on a feed item
type Caption struct {
	Text string `json:"text"`
}

// ImageVersions holds the image candidates for an item
type ImageVersions struct {
	Candidates []MediaCandidate `json:"candidates"`
}

// MediaCandidate is one sized rendition of an image
type MediaCandidate struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// VideoVersion is one rendition of a video
type VideoVersion struct {
	URL   string `json:"url"`
	Type  int    `json:"type"`
	Width int    `json:"width"`
}

// FeedLocation is the optional place attached to a feed item
type FeedLocation struct {
	PK   NumericID `json:"pk"`
	ID   NumericID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ItemOwner identifies the posting account on a feed item
type ItemOwner struct {
	PK       NumericID `json:"pk"`
	Username string    `json:"username"`
}
