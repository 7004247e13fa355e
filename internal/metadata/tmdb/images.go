package tmdb

const imageBaseURL = "https://image.tmdb.org/t/p/"

// Image size tokens understood by the TMDb image CDN.
const (
	SizeOriginal = "original"
	SizeW500     = "w500"
	SizeW200     = "w200"
	SizeW92      = "w92"
)

// Local fallbacks used when a movie or person has no image path.
const (
	PlaceholderPoster   = "/placeholder.png"
	PlaceholderBackdrop = "/placeholder-backdrop.png"
	PlaceholderAvatar   = "/placeholder-avatar.png"
)

// ImageURL returns the CDN URL for an image path, or "" when path is empty.
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + size + path
}

// PosterURL returns the poster URL or the poster placeholder.
func PosterURL(posterPath, size string) string {
	return imageOr(posterPath, size, PlaceholderPoster)
}

// BackdropURL returns the full-size backdrop URL or the backdrop placeholder.
func BackdropURL(backdropPath string) string {
	return imageOr(backdropPath, SizeOriginal, PlaceholderBackdrop)
}

// ProfileURL returns a cast profile picture URL or the avatar placeholder.
func ProfileURL(profilePath string) string {
	return imageOr(profilePath, SizeW200, PlaceholderAvatar)
}

// TrailerURL returns an embeddable URL for a video, or "" for non-YouTube hosts.
func TrailerURL(v Video) string {
	if v.Key == "" || v.Site != "YouTube" {
		return ""
	}
	return "https://www.youtube.com/embed/" + v.Key + "?autoplay=1"
}

func imageOr(path, size, placeholder string) string {
	if u := ImageURL(path, size); u != "" {
		return u
	}
	return placeholder
}
