package models

// FindPost returns the post with the given id.
func (d BlogData) FindPost(id string) (Post, bool) {
	if i := d.IndexOf(id); i >= 0 {
		return d.Posts[i], true
	}
	return Post{}, false
}

// IndexOf returns the position of the post with the given id, or -1.
func (d BlogData) IndexOf(id string) int {
	for i, p := range d.Posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Categories groups posts by category in order of first appearance.
// Posts without a category are skipped.
func (d BlogData) Categories() []Group {
	return groupBy(d.Posts, func(p Post) []string {
		if p.Category == "" {
			return nil
		}
		return []string{p.Category}
	})
}

// Tags groups posts by tag in order of first appearance.
func (d BlogData) Tags() []Group {
	return groupBy(d.Posts, func(p Post) []string { return p.Tags })
}

// PostsInCategory returns the posts whose category equals name, keeping their order.
func (d BlogData) PostsInCategory(name string) []Post {
	var out []Post
	for _, p := range d.Posts {
		if p.Category == name {
			out = append(out, p)
		}
	}
	return out
}

// PostsWithTag returns the posts tagged with name, keeping their order.
func (d BlogData) PostsWithTag(name string) []Post {
	var out []Post
	for _, p := range d.Posts {
		if p.HasTag(name) {
			out = append(out, p)
		}
	}
	return out
}

// Repair fills sections missing from an older or hand-edited blob with defaults.
func (d *BlogData) Repair(defaults BlogData) {
	if d.Posts == nil {
		d.Posts = defaults.Posts
	}
	if d.Settings == (SiteSettings{}) {
		d.Settings = defaults.Settings
	}
	if d.Theme == (ThemeConfig{}) {
		d.Theme = defaults.Theme
	}
	if d.FriendLinks == nil {
		d.FriendLinks = []FriendLink{}
	}
	for i := range d.Posts {
		if d.Posts[i].Tags == nil {
			d.Posts[i].Tags = []string{}
		}
	}
}

// Clone returns a deep copy so reducers can work without touching their input.
func (d BlogData) Clone() BlogData {
	c := d
	c.Posts = make([]Post, len(d.Posts))
	for i, p := range d.Posts {
		c.Posts[i] = p.Clone()
	}
	c.FriendLinks = append([]FriendLink{}, d.FriendLinks...)
	return c
}

func groupBy(posts []Post, keys func(Post) []string) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, p := range posts {
		for _, k := range keys(p) {
			i, ok := index[k]
			if !ok {
				i = len(groups)
				index[k] = i
				groups = append(groups, Group{Name: k})
			}
			groups[i].Posts = append(groups[i].Posts, p)
		}
	}
	return groups
}
