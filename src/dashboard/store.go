// store.go
package dashboard

import (
	"BikeSharingDashboard/src/config"
	"BikeSharingDashboard/src/datasource/file"
	"BikeSharingDashboard/src/storage"
	"fmt"
	"sync"
)

// Store 封装当前会话并提供线程安全访问
// 数据文件变化后整体替换会话，读者总是拿到完整的一份
type Store struct {
	session *Session
	mu      sync.RWMutex
}

func NewStore(s *Session) *Store {
	return &Store{session: s}
}

// Get 获取当前会话(线程安全)
func (st *Store) Get() *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.session
}

// Swap 替换当前会话，返回旧会话
func (st *Store) Swap(s *Session) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	old := st.session
	st.session = s
	return old
}

// Open 加载数据集并建立会话，加载失败返回LoadError
func Open(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) (*Session, error) {
	ds, err := file.LoadDataset(cfg, dcfg, logger)
	if err != nil {
		return nil, err
	}
	return NewSession(ds, dcfg.Dashboard)
}

// Reload 重新加载数据集，失败时保留旧会话
func (st *Store) Reload(cfg *config.Config, dcfg *config.DataConfig, logger *storage.Logger) error {
	s, err := Open(cfg, dcfg, logger)
	if err != nil {
		logger.Error(fmt.Sprintf("重新加载数据失败，继续使用旧数据: %v", err))
		return err
	}
	st.Swap(s)
	logger.Info(fmt.Sprintf("数据已重新加载，默认区间 %s", s.Bounds()))
	return nil
}
