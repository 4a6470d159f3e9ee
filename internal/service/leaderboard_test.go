package service

import "testing"

func TestDenseRank(t *testing.T) {
	rows := []LeaderboardEntry{
		{UserID: 1, Score: 80, TimeTakenSeconds: 600},
		{UserID: 2, Score: 95, TimeTakenSeconds: 900},
		{UserID: 3, Score: 80, TimeTakenSeconds: 450},
		{UserID: 4, Score: 80, TimeTakenSeconds: 450},
		{UserID: 5, Score: 60, TimeTakenSeconds: 300},
	}
	ranked := DenseRank(rows)

	// 期望顺序: u2(95) > u3/u4(80,450s 并列) > u1(80,600s) > u5(60)
	wantOrder := []uint{2, 3, 4, 1, 5}
	wantRank := []int{1, 2, 2, 3, 4}
	for i, e := range ranked {
		if e.UserID != wantOrder[i] {
			t.Errorf("position %d: userID = %d, want %d", i, e.UserID, wantOrder[i])
		}
		if e.Rank != wantRank[i] {
			t.Errorf("position %d: rank = %d, want %d", i, e.Rank, wantRank[i])
		}
	}
}

func TestDenseRankTimeBreaksTies(t *testing.T) {
	rows := []LeaderboardEntry{
		{UserID: 1, Score: 70, TimeTakenSeconds: 1200},
		{UserID: 2, Score: 70, TimeTakenSeconds: 800},
	}
	ranked := DenseRank(rows)
	if ranked[0].UserID != 2 || ranked[0].Rank != 1 {
		t.Errorf("faster同分者应排第一: %+v", ranked[0])
	}
	if ranked[1].Rank != 2 {
		t.Errorf("较慢者名次 = %d, want 2", ranked[1].Rank)
	}
}

func TestDenseRankNegativeScores(t *testing.T) {
	// 倒扣产生的负分同样参与排序
	rows := []LeaderboardEntry{
		{UserID: 1, Score: -12.5, TimeTakenSeconds: 100},
		{UserID: 2, Score: 0, TimeTakenSeconds: 100},
	}
	ranked := DenseRank(rows)
	if ranked[0].UserID != 2 || ranked[1].UserID != 1 {
		t.Errorf("unexpected order: %+v", ranked)
	}
}

func TestDenseRankEmpty(t *testing.T) {
	if got := DenseRank(nil); len(got) != 0 {
		t.Errorf("empty input produced %d rows", len(got))
	}
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0, TierBronze},
		{499.9, TierBronze},
		{500, TierSilver},
		{1500, TierGold},
		{2999, TierGold},
		{3000, TierPlatinum},
		{-50, TierBronze},
	}
	for _, tc := range cases {
		if got := TierFor(tc.score); got != tc.want {
			t.Errorf("TierFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
