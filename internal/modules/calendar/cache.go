package calendar

import (
	"fmt"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// Cache keeps generated month calendars per room. Entries are dropped when
// any override of the room changes.
type Cache struct {
	items *ccache.Cache[*MonthCalendar]
	ttl   time.Duration
}

func NewCache(maxSize int64, ttl time.Duration) *Cache {
	return &Cache{
		items: ccache.New(ccache.Configure[*MonthCalendar]().MaxSize(maxSize)),
		ttl:   ttl,
	}
}

func (c *Cache) Get(roomID int64, month string) (*MonthCalendar, bool) {
	item := c.items.Get(cacheKey(roomID, month))
	if item == nil || item.Expired() {
		return nil, false
	}
	return item.Value(), true
}

func (c *Cache) Set(roomID int64, month string, cal *MonthCalendar) {
	c.items.Set(cacheKey(roomID, month), cal, c.ttl)
}

// InvalidateRoom drops every cached month of the room.
func (c *Cache) InvalidateRoom(roomID int64) {
	c.items.DeletePrefix(roomPrefix(roomID))
}

func (c *Cache) Stop() {
	c.items.Stop()
}

func roomPrefix(roomID int64) string {
	return fmt.Sprintf("room:%d:", roomID)
}

func cacheKey(roomID int64, month string) string {
	return roomPrefix(roomID) + month
}
