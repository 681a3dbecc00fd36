package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/domino14/amazons/stats"
)

// AnalyzeLogFile analyzes the given autoplay CSV file and spits out a
// bunch of statistics.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return AnalyzeLog(file)
}

// AnalyzeLog is AnalyzeLogFile over any reader.
func AnalyzeLog(rd io.Reader) (string, error) {
	r := csv.NewReader(rd)

	// Record looks like:
	// gameID,white,black,winner,plies,firstMove
	plyStats := &stats.Statistic{}
	var plies []float64
	wins := map[string]float64{}
	var names []string
	whiteWins := 0.0
	gamesPlayed := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "gameID" {
			continue
		}
		if len(record) < 5 {
			return "", fmt.Errorf("short record %v", strings.Join(record, ","))
		}
		for _, n := range record[1:3] {
			if _, ok := wins[n]; !ok {
				wins[n] = 0
				names = append(names, n)
			}
		}
		n, err := strconv.Atoi(record[4])
		if err != nil {
			return "", err
		}
		plyStats.Push(float64(n))
		plies = append(plies, float64(n))
		switch record[3] {
		case "white":
			wins[record[1]]++
			whiteWins++
		case "black":
			wins[record[2]]++
		default:
			return "", fmt.Errorf("bad winner %q in game %v", record[3], record[0])
		}
		gamesPlayed++
	}
	if gamesPlayed == 0 {
		return "", fmt.Errorf("no games found")
	}

	var ss strings.Builder
	fmt.Fprintf(&ss, "Games played: %d\n", gamesPlayed)
	for _, n := range names {
		p, ci := stats.WinRate(wins[n], gamesPlayed, 95)
		fmt.Fprintf(&ss, "%v wins: %.1f (%.3f%% ± %.3f%%)\n", n, wins[n], 100*p, 100*ci)
	}
	p, ci := stats.WinRate(whiteWins, gamesPlayed, 95)
	fmt.Fprintf(&ss, "White wins: %.1f (%.3f%% ± %.3f%%)\n", whiteWins, 100*p, 100*ci)
	fmt.Fprintf(&ss, "Game length: mean %.3f plies, stdev %.3f, min %.0f, max %.0f\n",
		plyStats.Mean(), plyStats.Stdev(), plyStats.Min(), plyStats.Max())
	ss.WriteString("Game length histogram:\n")
	if err := histogram.Fprint(&ss, histogram.Hist(10, plies), histogram.Linear(40)); err != nil {
		return "", err
	}
	return ss.String(), nil
}
