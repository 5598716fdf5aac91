package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankLeaderboardOrdersByXPDescending(t *testing.T) {
	entries := []LeaderboardEntry{
		{ID: 1, StudentID: 10, XP: 300},
		{ID: 2, StudentID: 20, XP: 100},
		{ID: 3, StudentID: 30, XP: 200},
	}

	ranked := RankLeaderboard(entries)

	require.Equal(t, []uint{10, 30, 20}, studentOrder(ranked))
	require.Equal(t, []int{1, 2, 3}, rankOrder(ranked))
	require.Equal(t, 0, entries[0].Rank, "input slice must not be mutated")
}

func TestRankLeaderboardKeepsPriorOrderOnTies(t *testing.T) {
	entries := []LeaderboardEntry{
		{ID: 1, StudentID: 10, XP: 300, Rank: 1},
		{ID: 2, StudentID: 20, XP: 100, Rank: 2},
		{ID: 3, StudentID: 30, XP: 300, Rank: 3},
	}

	ranked := RankLeaderboard(entries)
	byStudent := make(map[uint]int)
	for _, entry := range ranked {
		byStudent[entry.StudentID] = entry.Rank
	}

	require.Equal(t, 1, byStudent[10])
	require.Equal(t, 3, byStudent[20])
	require.Equal(t, 2, byStudent[30])
}

func TestRankLeaderboardPlacesNewcomersAfterIncumbentsOnTies(t *testing.T) {
	entries := []LeaderboardEntry{
		{ID: 9, StudentID: 90, XP: 50},
		{ID: 4, StudentID: 40, XP: 50, Rank: 2},
		{ID: 5, StudentID: 50, XP: 50},
	}

	ranked := RankLeaderboard(entries)

	require.Equal(t, []uint{40, 50, 90}, studentOrder(ranked))
}

func TestRankLeaderboardEmpty(t *testing.T) {
	require.Empty(t, RankLeaderboard(nil))
}

func studentOrder(entries []LeaderboardEntry) []uint {
	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.StudentID)
	}
	return ids
}

func rankOrder(entries []LeaderboardEntry) []int {
	ranks := make([]int, 0, len(entries))
	for _, entry := range entries {
		ranks = append(ranks, entry.Rank)
	}
	return ranks
}
