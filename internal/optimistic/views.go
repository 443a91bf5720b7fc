package optimistic

// LikeView is what a client shows for one post: the liked flag and count.
type LikeView struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

// Toggle flips Liked and moves Count with it.
func (v LikeView) Toggle() LikeView {
	if v.Liked {
		return LikeView{Liked: false, Count: v.Count - 1}
	}
	return LikeView{Liked: true, Count: v.Count + 1}
}

// FollowView is what a client shows for a profile it may follow.
type FollowView struct {
	Following bool  `json:"following"`
	Followers int64 `json:"followers"`
}

func (v FollowView) Toggle() FollowView {
	if v.Following {
		return FollowView{Following: false, Followers: v.Followers - 1}
	}
	return FollowView{Following: true, Followers: v.Followers + 1}
}
